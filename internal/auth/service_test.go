package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

type mockAccountRepository struct {
	creds         map[string]*Credentials
	users         map[string]*User
	returnError   bool
	errorToReturn error
}

func newMockAccountRepository() *mockAccountRepository {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockAccountRepository{
		creds: map[string]*Credentials{
			"alice":  {UserID: "alice", PasswordHash: string(hashed), IsActive: true},
			"boss":   {UserID: "boss", PasswordHash: string(hashed), IsActive: true},
			"gone":   {UserID: "gone", PasswordHash: string(hashed), IsActive: false},
			"nopass": {UserID: "nopass", IsActive: true},
		},
		users: map[string]*User{
			"alice": {ID: "alice", Email: "alice@example.com", Role: RoleUser},
			"boss":  {ID: "boss", Role: RoleAdmin},
		},
	}
}

func (m *mockAccountRepository) GetCredentials(ctx context.Context, userID string) (*Credentials, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	c, ok := m.creds[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return c, nil
}

func (m *mockAccountRepository) GetActiveUser(ctx context.Context, userID string) (*User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		repo     *mockAccountRepository
		tokenGen *JWTTokenGenerator
		service  *Service
		ctx      context.Context
	)

	ginkgo.BeforeEach(func() {
		repo = newMockAccountRepository()
		tokenGen = NewJWTTokenGenerator("access-secret-access-secret-0000", "refresh-secret-refresh-secret-00", time.Minute, time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(repo, tokenGen, logger)
		ctx = context.Background()
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens carrying the role", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{ID: "boss", Password: "correct_password"})
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).NotTo(gomega.BeEmpty())

				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(claims.UserID).To(gomega.Equal("boss"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleAdmin))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should hide unknown ids behind invalid credentials", func() {
				_, err := service.Authenticate(ctx, LoginDTO{ID: "nobody", Password: "correct_password"})
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})

			ginkgo.It("should reject a wrong password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{ID: "alice", Password: "wrong"})
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})

			ginkgo.It("should reject accounts without a password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{ID: "nopass", Password: "anything"})
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})

			ginkgo.It("should reject inactive accounts", func() {
				_, err := service.Authenticate(ctx, LoginDTO{ID: "gone", Password: "correct_password"})
				gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should require an id", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Password: "x"})
				var verr ValidationError
				gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
			})

			ginkgo.It("should require a password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{ID: "alice"})
				var verr ValidationError
				gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should pass the error through", func() {
				repo.returnError = true
				repo.errorToReturn = errors.New("db down")
				_, err := service.Authenticate(ctx, LoginDTO{ID: "alice", Password: "correct_password"})
				gomega.Expect(err).To(gomega.MatchError("db down"))
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should issue a new pair from a refresh token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{ID: "alice", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			refreshed, err := service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			claims, err := service.ValidateAccessToken(refreshed.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("alice"))
		})

		ginkgo.It("should not accept an access token as a refresh token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{ID: "alice", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should refuse accounts deactivated since login", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{ID: "alice", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			delete(repo.users, "alice")

			_, err = service.RefreshTokens(ctx, tokens.RefreshToken)
			gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should reject malformed and empty tokens", func() {
			_, err := service.ValidateAccessToken("not.a.token")
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
			_, err = service.ValidateAccessToken("")
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should report expired tokens", func() {
			claims := &Claims{
				UserID:    "alice",
				Role:      RoleUser,
				TokenType: tokenTypeAccess,
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				},
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tokenGen.AccessTokenSecret)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(signed)
			gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a hash VerifyPassword accepts", func() {
			hash, err := HashPassword("s3cret", bcrypt.MinCost)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(VerifyPassword(hash, "s3cret")).To(gomega.Succeed())
			gomega.Expect(VerifyPassword(hash, "other")).NotTo(gomega.Succeed())
		})
	})
})

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var rbac *RBACAuthorization

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	serve := func(mw func(http.Handler) http.Handler, u *User) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if u != nil {
			req = req.WithContext(ContextWithUser(req.Context(), u))
		}
		rec := httptest.NewRecorder()
		mw(ok).ServeHTTP(rec, req)
		return rec.Code
	}

	ginkgo.BeforeEach(func() {
		rbac = NewRBACAuthorization(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
	})

	ginkgo.DescribeTable("role tiers",
		func(role string, adminCode, superCode int) {
			u := &User{ID: "x", Role: role}
			gomega.Expect(serve(rbac.RequireAdmin(), u)).To(gomega.Equal(adminCode))
			gomega.Expect(serve(rbac.RequireSuperAdmin(), u)).To(gomega.Equal(superCode))
		},
		ginkgo.Entry("user", RoleUser, http.StatusForbidden, http.StatusForbidden),
		ginkgo.Entry("admin", RoleAdmin, http.StatusNoContent, http.StatusForbidden),
		ginkgo.Entry("superadmin", RoleSuperAdmin, http.StatusNoContent, http.StatusNoContent),
	)

	ginkgo.It("should reject anonymous requests", func() {
		gomega.Expect(serve(rbac.RequireAdmin(), nil)).To(gomega.Equal(http.StatusUnauthorized))
	})
})
