package api

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rpupo63/blog-platform-backend/errs"
	"github.com/rpupo63/blog-platform-backend/services"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// uploadFile sends an uploaded image to the media host and returns its public URL.
func uploadFile(r *http.Request, media services.MediaHost, fh *multipart.FileHeader) (string, error) {
	if media == nil {
		return "", errs.NewServiceUnavailableError("media host")
	}

	contentType := strings.ToLower(fh.Header.Get("Content-Type"))
	allowed := false
	for _, t := range allowedImageTypes {
		if contentType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", errs.NewUnsupportedMediaTypeError(contentType, allowedImageTypes)
	}

	f, err := fh.Open()
	if err != nil {
		return "", errs.NewMalformedPayloadError("file", err)
	}
	defer f.Close()

	return media.Upload(r.Context(), fh.Filename, contentType, f)
}
