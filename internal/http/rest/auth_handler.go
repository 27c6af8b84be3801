package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/truckersblacklist/blacklist_api/internal/model"
	"github.com/truckersblacklist/blacklist_api/util"
	"github.com/truckersblacklist/blacklist_api/util/tracing"
	"github.com/truckersblacklist/blacklist_api/util/values"
)

func (api *API) AuthRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/anonymous", Handler(api.AnonymousSession))
	mux.Method(http.MethodPost, "/register", Handler(api.Register))
	mux.Method(http.MethodPost, "/login", Handler(api.Login))
	mux.Method(http.MethodPost, "/password-reset", Handler(api.PasswordReset))
	mux.Method(http.MethodPost, "/phone/send-code", Handler(api.SendPhoneCode))
	mux.Method(http.MethodPost, "/phone/verify-code", Handler(api.VerifyPhoneCode))
	mux.Method(http.MethodPost, "/google/login", Handler(api.LoginWithGoogle))

	mux.Group(func(r chi.Router) {
		r.Use(api.RequireLogin)
		r.Method(http.MethodPost, "/logout", Handler(api.Logout))
	})

	return mux
}

// AnonymousSession mirrors the mobile client's bootstrap: users browse and
// vote under an anonymous provider identity until they upgrade it.
func (api *API) AnonymousSession(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	session, err := api.Deps.Identity.SignInAnonymously(r.Context())
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	resp, status, message, err := api.SessionResponseHelper(session)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    message,
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       resp,
	}
}

func (api *API) Register(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.RegisterRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "email and password are required", values.BadRequestBody, &tc)
	}

	session, err := api.Deps.Identity.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	resp, status, message, err := api.SessionResponseHelper(session)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Account created successfully",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       resp,
	}
}

func (api *API) Login(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.LoginRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "email and password are required", values.BadRequestBody, &tc)
	}

	session, err := api.Deps.Identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	resp, status, message, err := api.SessionResponseHelper(session)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Logged in successfully",
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       resp,
	}
}

func (api *API) PasswordReset(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.PasswordResetRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "a valid email address is required", values.BadRequestBody, &tc)
	}

	if err := api.Deps.Identity.SendPasswordReset(r.Context(), req.Email); err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "A password reset link has been sent to your email address.",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}

func (api *API) SendPhoneCode(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.SendPhoneCodeRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "a phone number is required", values.BadRequestBody, &tc)
	}

	sessionInfo, err := api.Deps.Identity.SendPhoneCode(r.Context(), req.PhoneNumber, req.RecaptchaToken)
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Verification code sent",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       model.SendPhoneCodeResponse{SessionInfo: sessionInfo},
	}
}

func (api *API) VerifyPhoneCode(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.VerifyPhoneCodeRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "session info and code are required", values.BadRequestBody, &tc)
	}

	session, err := api.Deps.Identity.VerifyPhoneCode(r.Context(), req.SessionInfo, req.Code)
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	resp, status, message, err := api.SessionResponseHelper(session)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Signed in successfully",
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       resp,
	}
}

func (api *API) LoginWithGoogle(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req model.GoogleLoginRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return respondWithError(err, "an access token is required", values.BadRequestBody, &tc)
	}

	session, err := api.Deps.Identity.SignInWithGoogle(r.Context(), req.AccessToken)
	if err != nil {
		status, message := classifyError(err)
		return respondWithError(err, message, status, &tc)
	}

	resp, status, message, err := api.SessionResponseHelper(session)
	if err != nil {
		return respondWithError(err, message, status, &tc)
	}

	return &ServerResponse{
		Message:    "Logged in successfully",
		Status:     status,
		StatusCode: util.StatusCode(status),
		Data:       resp,
	}
}

// Logout is a token discard. The server keeps no session state for the
// client beyond the JWT, and clients are expected to detach their
// subscriptions when they sign out.
func (api *API) Logout(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	return &ServerResponse{
		Message:    "You have been logged out successfully.",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}
