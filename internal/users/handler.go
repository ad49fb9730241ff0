package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fittrackapp/fittrack/internal/auth"
	"github.com/fittrackapp/fittrack/internal/middleware"
	"github.com/fittrackapp/fittrack/internal/telemetry/metrics"
	"github.com/fittrackapp/fittrack/internal/telemetry/tracing"
	"github.com/fittrackapp/fittrack/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int) error
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID int    `json:"userid"`
}

type Handler struct {
	repo           usersRepo
	authService    *auth.Service
	metricsManager *metrics.Manager
}

func NewHandler(repo usersRepo, authService *auth.Service, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		authService:    authService,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	loginRateLimitAllowedPerMin int,
) {
	authRouter := mainRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", handler.HandleSignup).Methods("POST", "OPTIONS").Name("signup")
	authRouter.HandleFunc("/login", handler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	authRouter.HandleFunc("/logout", handler.HandleLogout).Methods("GET", "OPTIONS").Name("logout")
	// rate limit the auth endpoints to prevent abuse
	authRouter.Use(middleware.RateLimit(rateLimiter, "auth", loginRateLimitAllowedPerMin, handler.metricsManager))

	usersRouter := mainRouter.PathPrefix("/api/users").Subrouter()
	usersRouter.HandleFunc("", handler.HandleList).Methods("GET", "OPTIONS").Name("list-users")
	usersRouter.HandleFunc("", handler.HandleCreate).Methods("POST", "OPTIONS").Name("new-user")
	usersRouter.HandleFunc("/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-user")
	usersRouter.HandleFunc("/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-user")
	usersRouter.HandleFunc("/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-user")
}

type signupRequest struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.signup")
	defer span.End()

	var signupReq signupRequest
	if err := json.NewDecoder(r.Body).Decode(&signupReq); err != nil {
		log.Tracef("signup, unmarshal json params: %s", err)
		http.Error(w, "signup failed", http.StatusBadRequest)
		return
	}

	if signupReq.Email == "" || signupReq.Password == "" {
		http.Error(w, "error, email and password are required", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(signupReq.Password)
	if err != nil {
		log.Errorf("signup, hash password: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	addedUser, err := handler.repo.Add(ctx, User{
		Name:         signupReq.Name,
		Surname:      signupReq.Surname,
		Email:        signupReq.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, "user exists", http.StatusConflict)
			return
		}
		log.Errorf("signup, add user: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	token, err := handler.authService.Login(ctx, addedUser.ID, time.Now())
	if err != nil {
		log.Errorf("signup, generate token: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterSignups.Inc()
	}

	respJson, err := json.Marshal(LoginResponse{
		Token:  token,
		UserID: addedUser.ID,
	})
	if err != nil {
		log.Errorf("signup, marshal response: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user signed up: %d", addedUser.ID)
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var loginReq loginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		log.Tracef("login, unmarshal json params: %s", err)
		http.Error(w, "login failed", http.StatusBadRequest)
		return
	}

	if loginReq.Email == "" || loginReq.Password == "" {
		http.Error(w, "error, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[email] failed login attempt: %s", loginReq.Email)
			http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
			return
		}
		log.Errorf("login, get user by email: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt: %s", loginReq.Email)
		http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
		return
	}

	token, err := handler.authService.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login, generate token: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(LoginResponse{
		Token:  token,
		UserID: user.ID,
	})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	token := r.Header.Get(middleware.AuthTokenHeader)
	if token == "" {
		http.Error(w, "error, token empty", http.StatusBadRequest)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, token)
	if err != nil {
		log.Errorf("logout: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.list")
	defer span.End()

	usersList, err := handler.repo.List(ctx)
	if err != nil {
		log.Errorf("list users: %s", err)
		http.Error(w, "failed to get users", http.StatusInternalServerError)
		return
	}

	usersJson, err := json.Marshal(usersList)
	if err != nil {
		log.Errorf("marshal users: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, usersJson)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.get")
	defer span.End()

	id, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("get user %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("marshal user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.create")
	defer span.End()

	var createReq signupRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		log.Tracef("create user, unmarshal json params: %s", err)
		http.Error(w, "create user failed", http.StatusBadRequest)
		return
	}

	if createReq.Email == "" || createReq.Password == "" {
		http.Error(w, "error, email and password are required", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(createReq.Password)
	if err != nil {
		log.Errorf("create user, hash password: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	addedUser, err := handler.repo.Add(ctx, User{
		Name:         createReq.Name,
		Surname:      createReq.Surname,
		Email:        createReq.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, "user exists", http.StatusConflict)
			return
		}
		log.Errorf("create user: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(addedUser)
	if err != nil {
		log.Errorf("marshal created user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.update")
	defer span.End()

	id, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	var updateReq signupRequest
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		log.Tracef("update user, unmarshal json params: %s", err)
		http.Error(w, "update user failed", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("update, get user %d: %s", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	user.Name = updateReq.Name
	user.Surname = updateReq.Surname
	user.Email = updateReq.Email
	if updateReq.Password != "" {
		passwordHash, err := pkg.HashPassword(updateReq.Password)
		if err != nil {
			log.Errorf("update user, hash password: %s", err)
			http.Error(w, "update user failed", http.StatusInternalServerError)
			return
		}
		user.PasswordHash = passwordHash
	}

	if err := handler.repo.Update(ctx, user); err != nil {
		log.Errorf("update user %d: %s", id, err)
		http.Error(w, "error, failed to update user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.delete")
	defer span.End()

	id, err := userIDFromPath(r)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("delete user %d: %s", id, err)
		http.Error(w, "error, failed to delete user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func userIDFromPath(r *http.Request) (int, error) {
	vars := mux.Vars(r)
	return strconv.Atoi(vars["id"])
}
