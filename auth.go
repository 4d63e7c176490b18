package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var jwtSecret = []byte("change-this-secret-key-in-production")

func init() {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		jwtSecret = []byte(secret)
	}
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// UserStore keeps builder users in memory. The agent is not the system of
// record for accounts; dashboards live in the main product and sessions are
// short-lived, so a durable user table buys nothing here.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by username
}

func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]*User)}
}

func (us *UserStore) Get(username string) (*User, bool) {
	us.mu.RLock()
	defer us.mu.RUnlock()
	u, ok := us.users[username]
	return u, ok
}

func (us *UserStore) Put(u *User) error {
	us.mu.Lock()
	defer us.mu.Unlock()
	if _, exists := us.users[u.Username]; exists {
		return fmt.Errorf("username already taken")
	}
	us.users[u.Username] = u
	return nil
}

func (us *UserStore) TouchLogin(username string) {
	us.mu.Lock()
	defer us.mu.Unlock()
	if u, ok := us.users[username]; ok {
		now := time.Now()
		u.LastLogin = &now
	}
}

type AuthHandler struct {
	users *UserStore
}

func NewAuthHandler(users *UserStore) *AuthHandler {
	return &AuthHandler{users: users}
}

func (ah *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}

	user, ok := ah.users.Get(creds.Username)
	if !ok {
		LogWarn("Login attempt with invalid username", map[string]interface{}{
			"username": creds.Username,
		})
		http.Error(w, "invalid credentials", 401)
		return
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		LogWarn("Login attempt with invalid password", map[string]interface{}{
			"username": creds.Username,
		})
		http.Error(w, "invalid credentials", 401)
		return
	}

	// Generate JWT token
	expirationTime := time.Now().Add(24 * time.Hour)
	claims := &Claims{
		Username: creds.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		LogError(err, "Failed to generate JWT token", map[string]interface{}{
			"username": creds.Username,
		})
		http.Error(w, "failed to generate token", 500)
		return
	}

	ah.users.TouchLogin(creds.Username)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"token":    tokenString,
		"username": creds.Username,
		"role":     user.Role,
		"expires":  expirationTime.Unix(),
	})
}

func (ah *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "method not allowed", 405)
		return
	}

	var user struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		http.Error(w, "invalid request", 400)
		return
	}
	if user.Username == "" || user.Password == "" {
		http.Error(w, "username and password are required", 400)
		return
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		LogError(err, "Failed to hash password during registration", map[string]interface{}{
			"username": user.Username,
		})
		http.Error(w, "failed to hash password", 500)
		return
	}

	// Default role to viewer if not specified
	if user.Role == "" {
		user.Role = "viewer"
	}

	newUser := &User{
		ID:           generateID(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: string(hashedPassword),
		Role:         user.Role,
		CreatedAt:    time.Now(),
	}
	if err := ah.users.Put(newUser); err != nil {
		http.Error(w, err.Error(), 409)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":       newUser.ID,
		"username": newUser.Username,
		"email":    newUser.Email,
		"role":     newUser.Role,
	})
}

func (ah *AuthHandler) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// TokenFromRequest extracts a bearer token from the Authorization header or,
// for WebSocket upgrades where headers are awkward, the token query parameter.
func TokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return r.URL.Query().Get("token")
}

func AuthMiddleware(ah *AuthHandler, handler http.HandlerFunc, requiredRole string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := TokenFromRequest(r)
		if tokenString == "" {
			http.Error(w, "unauthorized", 401)
			return
		}

		claims, err := ah.VerifyToken(tokenString)
		if err != nil {
			http.Error(w, "invalid token", 401)
			return
		}

		// Check role if required
		if requiredRole != "" {
			if !hasPermission(claims.Role, requiredRole) {
				http.Error(w, "forbidden", 403)
				return
			}
		}

		// Add user info to request context
		r.Header.Set("X-User-Username", claims.Username)
		r.Header.Set("X-User-Role", claims.Role)

		handler(w, r)
	}
}

func hasPermission(userRole, requiredRole string) bool {
	roleHierarchy := map[string]int{
		"viewer": 1,
		"editor": 2,
		"admin":  3,
	}

	userLevel := roleHierarchy[userRole]
	requiredLevel := roleHierarchy[requiredRole]

	return userLevel >= requiredLevel
}

func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
