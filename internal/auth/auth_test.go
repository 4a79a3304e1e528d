package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "access-secret-for-tests"
	refreshSecret = "refresh-secret-for-tests"
)

// signClaims builds a token by hand so tests can control expiry and claims.
func signClaims(t *testing.T, secret, tokenType string, expires time.Time, mutate ...func(*JWTClaims)) string {
	t.Helper()

	claims := &JWTClaims{
		UserID:    7,
		Email:     "coach@example.com",
		Role:      RoleTrainer,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Audience:  []string{jwtAudience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(expires.Add(-time.Minute)),
		},
	}
	for _, m := range mutate {
		m(claims)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("squat-rack-42")
	require.NoError(t, err)
	assert.NotEqual(t, "squat-rack-42", hash)

	other, err := HashPassword("squat-rack-42")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt salts every hash")

	cases := map[string]struct {
		hash  string
		plain string
		want  bool
	}{
		"matching password":  {hash, "squat-rack-42", true},
		"wrong password":     {hash, "squat-rack-43", false},
		"empty password":     {hash, "", false},
		"malformed hash":     {"not-a-bcrypt-hash", "squat-rack-42", false},
		"second salted hash": {other, "squat-rack-42", true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, CheckPassword(tc.hash, tc.plain))
		})
	}
}

func TestGeneratedTokensCarryIdentity(t *testing.T) {
	roles := []string{RoleMember, RoleTrainer, RoleAdmin}

	for i, role := range roles {
		t.Run(role, func(t *testing.T) {
			userID := 100 + i
			access, refresh, err := GenerateTokens(userID, role+"@example.com", role, accessSecret, refreshSecret)
			require.NoError(t, err)

			accessClaims, err := ValidateToken(access, accessSecret)
			require.NoError(t, err)
			assert.Equal(t, userID, accessClaims.UserID)
			assert.Equal(t, role+"@example.com", accessClaims.Email)
			assert.Equal(t, role, accessClaims.Role)
			assert.Equal(t, "access", accessClaims.TokenType)
			assert.Equal(t, jwtIssuer, accessClaims.Issuer)
			assert.Contains(t, accessClaims.Audience, jwtAudience)
			assert.WithinDuration(t, time.Now().Add(AccessTokenTTL), accessClaims.ExpiresAt.Time, 2*time.Second)

			refreshClaims, err := ValidateToken(refresh, refreshSecret)
			require.NoError(t, err)
			assert.Equal(t, "refresh", refreshClaims.TokenType)
			assert.WithinDuration(t, time.Now().Add(RefreshTokenTTL), refreshClaims.ExpiresAt.Time, 2*time.Second)

			// Each token is bound to its own secret.
			_, err = ValidateToken(access, refreshSecret)
			assert.Error(t, err)
		})
	}
}

func TestGenerateRejectsEmptySecret(t *testing.T) {
	_, err := GenerateAccessToken(1, "a@example.com", RoleMember, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, err = GenerateRefreshToken(1, "a@example.com", RoleMember, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)

	_, _, err = GenerateTokens(1, "a@example.com", RoleMember, accessSecret, "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}

func TestValidateTokenFailures(t *testing.T) {
	future := time.Now().Add(time.Hour)

	cases := []struct {
		name    string
		token   func(t *testing.T) string
		secret  string
		wantErr error
	}{
		{
			name:    "empty secret",
			token:   func(t *testing.T) string { return signClaims(t, accessSecret, "access", future) },
			secret:  "",
			wantErr: ErrEmptyJWTSecret,
		},
		{
			name:    "expired",
			token:   func(t *testing.T) string { return signClaims(t, accessSecret, "access", time.Now().Add(-time.Hour)) },
			secret:  accessSecret,
			wantErr: ErrTokenExpired,
		},
		{
			name:   "wrong secret",
			token:  func(t *testing.T) string { return signClaims(t, "someone-else", "access", future) },
			secret: accessSecret,
		},
		{
			name:   "garbage",
			token:  func(*testing.T) string { return "not.a.jwt" },
			secret: accessSecret,
		},
		{
			name: "foreign issuer",
			token: func(t *testing.T) string {
				return signClaims(t, accessSecret, "access", future, func(c *JWTClaims) { c.Issuer = "another-gym" })
			},
			secret: accessSecret,
		},
		{
			name: "foreign audience",
			token: func(t *testing.T) string {
				return signClaims(t, accessSecret, "access", future, func(c *JWTClaims) { c.Audience = []string{"partners"} })
			},
			secret: accessSecret,
		},
		{
			name: "no expiry",
			token: func(t *testing.T) string {
				return signClaims(t, accessSecret, "access", future, func(c *JWTClaims) { c.ExpiresAt = nil })
			},
			secret: accessSecret,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := ValidateToken(tc.token(t), tc.secret)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Nil(t, claims)
		})
	}
}

func TestRefreshAccessToken(t *testing.T) {
	t.Run("issues a fresh access token", func(t *testing.T) {
		refresh := signClaims(t, refreshSecret, "refresh", time.Now().Add(time.Hour))

		access, claims, err := RefreshAccessToken(refresh, refreshSecret, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)
		assert.Equal(t, RoleTrainer, claims.Role)

		issued, err := ValidateToken(access, accessSecret)
		require.NoError(t, err)
		assert.Equal(t, "access", issued.TokenType)
		assert.Equal(t, "coach@example.com", issued.Email)
	})

	cases := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"access token presented", signClaims(t, refreshSecret, "access", time.Now().Add(time.Hour)), ErrInvalidTokenType},
		{"expired refresh token", signClaims(t, refreshSecret, "refresh", time.Now().Add(-time.Minute)), ErrTokenExpired},
		{"malformed", "abc.def", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			access, claims, err := RefreshAccessToken(tc.token, refreshSecret, accessSecret)
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			assert.Empty(t, access)
			assert.Nil(t, claims)
		})
	}
}

func TestPrincipalRoles(t *testing.T) {
	cases := []struct {
		role             string
		staff, isTrainer bool
	}{
		{RoleMember, false, false},
		{RoleTrainer, false, true},
		{RoleAdmin, true, false},
		{"", false, false},
	}
	for _, tc := range cases {
		p := Principal{UserID: 1, Role: tc.role}
		assert.Equal(t, tc.staff, p.IsStaff(), "IsStaff(%q)", tc.role)
		assert.Equal(t, tc.isTrainer, p.IsTrainer(), "IsTrainer(%q)", tc.role)
	}
}
