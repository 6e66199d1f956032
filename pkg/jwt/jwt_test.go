package jwt

import (
	"testing"

	"github.com/openhrm/pulse/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("emp_42", "employee", 1, testSecret, 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "emp_42", claims.UserId)
	assert.Equal(t, "employee", claims.Role)
	assert.Equal(t, 1, claims.PlatformId)
	assert.Equal(t, "pulse", claims.Issuer)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("emp_42", "employee", 1, testSecret, 24)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	require.Error(t, err)

	var bizErr *errcode.Error
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, errcode.ErrTokenInvalid.Code, bizErr.Code)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not.a.token", testSecret)
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken("emp_42", "employee", 1, testSecret, -1)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	token, err := GenerateToken("emp_42", "hr", 2, testSecret, 24)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret, "emp_42", 2)
	require.NoError(t, err)
	assert.Equal(t, "hr", claims.Role)

	_, err = ValidateToken(token, testSecret, "emp_43", 2)
	assert.ErrorIs(t, err, errcode.ErrTokenMismatch)

	_, err = ValidateToken(token, testSecret, "emp_42", 3)
	assert.ErrorIs(t, err, errcode.ErrTokenMismatch)
}
