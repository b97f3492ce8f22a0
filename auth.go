package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash is a pre-computed bcrypt hash used when a login email isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

const userCols = "id, email, name, auth_token, password, is_admin, created_at"

// signupRequest is the request body for POST /api/signup.
type signupRequest struct {
	Email    string  `json:"email"    binding:"required,email"`
	Name     string  `json:"name"     binding:"required,notblank"`
	Password string  `json:"password" binding:"required,min=8"`
	HeightCM float64 `json:"heightCm" binding:"required,gt=0,lte=300"`
	WeightKG float64 `json:"weightKg" binding:"required,gt=0,lte=700"`
	Age      *int    `json:"age"      binding:"omitempty,gt=0,lte=130"`
	Gender   *string `json:"gender"   binding:"omitempty,oneof=male female other"`
	Goal     string  `json:"goal"     binding:"required,oneof=lose maintain gain"`
	Theme    *string `json:"theme"    binding:"omitempty,oneof=light dark system"`
}

// signup creates a user and their profile with an initial calorie target.
// POST /api/signup (public). Returns the new auth token.
func (h *Handler) signup(c *gin.Context) {
	var body signupRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	p := bodyProfile{WeightKG: body.WeightKG, HeightCM: body.HeightCM, Age: body.Age, Goal: body.Goal}
	if body.Gender != nil {
		p.Gender = *body.Gender
	}
	_, rda := computeCalorieTarget(p)
	theme := "system"
	if body.Theme != nil {
		theme = *body.Theme
	}

	var u user
	err = h.inTx(c, func(tx pgx.Tx) error {
		var err error
		u, err = queryOne[user](c, tx,
			`INSERT INTO users (email, name, password, auth_token)
			 VALUES (@email, @name, @password, @token)
			 RETURNING `+userCols,
			pgx.NamedArgs{
				"email": email, "name": strings.TrimSpace(body.Name),
				"password": string(hash), "token": uuid.NewString(),
			})
		if err != nil {
			return err
		}
		_, err = tx.Exec(c,
			`INSERT INTO user_profiles (user_id, height_cm, weight_kg, age, gender, goal, rda, theme)
			 VALUES (@userID, @heightCM, @weightKG, @age, @gender, @goal, @rda, @theme)`,
			pgx.NamedArgs{
				"userID": u.ID, "heightCM": body.HeightCM, "weightKG": body.WeightKG,
				"age": body.Age, "gender": body.Gender, "goal": body.Goal, "rda": rda,
				"theme": theme,
			})
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			apiError(c, http.StatusConflict, "email already registered")
			return
		}
		slog.ErrorContext(c, "signup failed", "error", err)
		apiError(c, http.StatusInternalServerError, "failed to create account")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": u.AuthToken, "userId": u.ID})
}

// login verifies email/password and returns the user's auth token.
// POST /api/login (public).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"    binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, bindErrorMessage(err))
		return
	}

	u, lookupErr := queryOne[user](c, h.db,
		"SELECT "+userCols+" FROM users WHERE email = @email",
		pgx.NamedArgs{"email": strings.ToLower(strings.TrimSpace(body.Email))})

	// Always run bcrypt so a missing account costs as much as a wrong password.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		apiError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "userId": u.ID, "isAdmin": u.IsAdmin})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// authMiddleware validates the Bearer token and sets user_id and is_admin on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		var userID int
		var isAdmin bool
		err := h.db.QueryRow(c, "SELECT id, is_admin FROM users WHERE auth_token = $1", token).
			Scan(&userID, &isAdmin)
		if err != nil {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("is_admin", isAdmin)
		c.Next()
	}
}

// adminOnly rejects requests from non-admin users with 403. It must run after
// authMiddleware.
func adminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("is_admin") {
			apiError(c, http.StatusForbidden, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
