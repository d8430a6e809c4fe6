package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":    "9090",
		"BAD_INT": "x",
		"FLAG":    "true",
		"TTL":     "15m",
		"SECS":    "30",
		"ORIGINS": "https://a.example, ,https://b.example",
		"EMPTY":   "",
	}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "fallback", GetString(c, "EMPTY", "fallback"))
	assert.Equal(t, 7, GetInt(c, "BAD_INT", 7))
	assert.True(t, GetBool(c, "FLAG", false))
	assert.Equal(t, 15*time.Minute, GetDuration(c, "TTL", time.Hour))
	assert.Equal(t, 30*time.Second, GetDuration(c, "SECS", time.Hour))
	assert.Equal(t, time.Hour, GetDuration(c, "MISSING", time.Hour))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetList(c, "ORIGINS"))
	assert.Equal(t, "x", GetString(nil, "PORT", "x"))
}

func TestLoadBuildsDatabaseURLFromParts(t *testing.T) {
	s := Load(map[string]string{
		"DB_HOST":     "db.internal",
		"DB_USER":     "blog",
		"DB_PASSWORD": "pw",
		"DB_NAME":     "blog",
	})

	assert.Equal(t, "host=db.internal user=blog password=pw dbname=blog port=5432 sslmode=disable", s.DatabaseURL)
	assert.Equal(t, 24*time.Hour, s.AccessTokenTTL)
	assert.Equal(t, 72*time.Hour, s.PasswordResetTimeout)
	assert.True(t, s.AutoMigrate)
}

func TestValidate(t *testing.T) {
	s := Load(map[string]string{"DATABASE_URL": "postgres://x"})
	require.Error(t, s.Validate())

	s.SecretKey = "short"
	require.Error(t, s.Validate())

	s.SecretKey = "0123456789abcdef0123456789abcdef"
	require.NoError(t, s.Validate())
}

type fakeParameterStore struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeParameterStore) GetParametersByPath(_ context.Context, _ *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestMergeParameters(t *testing.T) {
	store := &fakeParameterStore{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []ssmtypes.Parameter{
				{Name: aws.String("/blog/prod/SECRET_KEY"), Value: aws.String("from-ssm")},
			},
			NextToken: aws.String("next"),
		},
		{
			Parameters: []ssmtypes.Parameter{
				{Name: aws.String("/blog/prod/PORT"), Value: aws.String("1111")},
			},
		},
	}}
	env := map[string]string{"PORT": "8080"}

	require.NoError(t, MergeParameters(context.Background(), store, "/blog/prod", env))
	assert.Equal(t, "from-ssm", env["SECRET_KEY"])
	assert.Equal(t, "8080", env["PORT"])
	assert.Equal(t, 2, store.calls)
}
