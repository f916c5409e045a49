// Package stubapi is an in-memory double of the Nebula backend REST
// API. It speaks the same wire contract the real backend does, close
// enough for the client's local development and integration tests. It
// is not a production server: no persistence, single process, HMAC
// tokens with a dev secret.
package stubapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

type Server struct {
	store     *Store
	logger    *logger.Logger
	jwtSecret []byte
	uploadDir string
	pageSize  int
}

type Option func(*Server)

func WithUploadDir(dir string) Option {
	return func(s *Server) { s.uploadDir = dir }
}

func WithPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

func NewServer(jwtSecret string, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		store:     NewStore(),
		logger:    log,
		jwtSecret: []byte(jwtSecret),
		uploadDir: "uploads",
		pageSize:  6,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router wires every endpoint the client calls.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		// --- Public routes ---
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)
		r.Get("/events", s.handleListEvents)
		r.Get("/events/page/{page}", s.handleEventsPage)
		r.Get("/events/{id}", s.handleEventByID)
		r.Get("/scan/public/status/{bookingId}", s.handleScanStatus)

		// --- Authenticated routes ---
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.With(s.requireRole(models.RoleUser)).Post("/booking", s.handleCreateBooking)
			r.With(s.requireRole(models.RoleUser)).Get("/booking/mybookings", s.handleMyBookings)
			r.With(s.requireRole(models.RoleUser, models.RoleAdmin)).Delete("/booking/{id}", s.handleDeleteBooking)
			r.With(s.requireRole(models.RoleUser)).Get("/booking/booking/{id}/tickets", s.handleTicketsByBooking)
			r.With(s.requireRole(models.RoleUser)).Post("/qr/generate/{bookingId}", s.handleGenerateQR)

			r.With(s.requireRole(models.RoleTicketChecker)).Post("/scan/validate", s.handleValidate)

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireRole(models.RoleAdmin))
				r.Post("/events", s.handleCreateEvent)
				r.Delete("/events/{id}", s.handleDeleteEvent)
				r.Get("/bookings", s.handleAllBookings)
				r.Get("/registerusers", s.handleRegisteredUsers)
				r.Get("/ticket-checkers", s.handleTicketCheckers)
				r.Get("/{role}", s.handleUsersByRole)
			})
		})
	})

	return r
}

type ctxKey string

const userKey ctxKey = "stub_user"

func (s *Server) issueToken(user *storedUser) (string, error) {
	claims := jwt.MapClaims{
		"sub":    user.Email,
		"userId": user.ID,
		"role":   string(user.Role),
		"exp":    time.Now().Add(24 * time.Hour).Unix(),
		"iat":    time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// authMiddleware verifies the bearer token and loads the caller.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "invalid Authorization header format")
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.jwtSecret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}
		userID, ok := claims["userId"].(float64)
		if !ok {
			writeError(w, http.StatusUnauthorized, "token missing userId claim")
			return
		}

		s.store.mu.Lock()
		user, exists := s.store.users[int64(userID)]
		s.store.mu.Unlock()
		if !exists {
			writeError(w, http.StatusUnauthorized, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !user.Role.In(roles...) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func currentUser(r *http.Request) *storedUser {
	user, _ := r.Context().Value(userKey).(*storedUser)
	return user
}
