package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/truckersblacklist/blacklist_api/config"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

// Session is what the identity provider hands back: an opaque user id plus
// the provider tokens. The rest of the system only ever needs the UserID.
type Session struct {
	UserID       string `json:"user_id"`
	IDToken      string `json:"-"`
	RefreshToken string `json:"-"`
	Email        string `json:"email,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Anonymous    bool   `json:"anonymous"`
}

// Client talks to the Google Identity Toolkit REST API. Sign-out has no
// remote call; it is a local token discard done by the caller.
type Client struct {
	APIKey  string
	BaseURL string
	Client  *http.Client

	oauthConfig *oauth2.Config
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		APIKey:  cfg.IdentityAPIKey,
		BaseURL: defaultBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

type apiParams struct {
	Key string `url:"key"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type accountResponse struct {
	LocalID      string `json:"localId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
}

func (c *Client) post(ctx context.Context, action string, body, out interface{}) error {
	params, err := query.Values(apiParams{Key: c.APIKey})
	if err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	endpoint := fmt.Sprintf("%s/accounts:%s?%s", c.BaseURL, action, params.Encode())

	payload, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var perr providerError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&perr); decodeErr != nil || perr.Error.Message == "" {
			return &Error{Kind: KindUnavailable, Err: errors.Errorf("identity provider returned status %d", resp.StatusCode)}
		}
		return classify(perr.Error.Message, nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUnavailable, Err: err}
	}
	return nil
}

// SignInAnonymously starts an anonymous session, the default when the app
// boots without a stored credential.
func (c *Client) SignInAnonymously(ctx context.Context) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "signUp", map[string]interface{}{
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID:       resp.LocalID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		Anonymous:    true,
	}, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return sessionFromAccount(resp), nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return sessionFromAccount(resp), nil
}

// SendPasswordReset asks the provider to email a reset link; the provider
// owns the email delivery.
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "sendOobCode", map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// SendPhoneCode starts the phone verification handshake and returns the
// session info token the verify step needs.
func (c *Client) SendPhoneCode(ctx context.Context, phoneNumber, recaptchaToken string) (string, error) {
	var resp struct {
		SessionInfo string `json:"sessionInfo"`
	}
	err := c.post(ctx, "sendVerificationCode", map[string]interface{}{
		"phoneNumber":    phoneNumber,
		"recaptchaToken": recaptchaToken,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.SessionInfo, nil
}

func (c *Client) VerifyPhoneCode(ctx context.Context, sessionInfo, code string) (*Session, error) {
	var resp accountResponse
	err := c.post(ctx, "signInWithPhoneNumber", map[string]interface{}{
		"sessionInfo": sessionInfo,
		"code":        code,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return sessionFromAccount(resp), nil
}

// SignInWithGoogle exchanges a Google OAuth access token for a session.
func (c *Client) SignInWithGoogle(ctx context.Context, accessToken string) (*Session, error) {
	token := &oauth2.Token{AccessToken: accessToken}
	client := c.oauthConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: KindWrongCredential, Code: fmt.Sprintf("OAUTH_STATUS_%d", resp.StatusCode)}
	}

	var userInfo struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	if userInfo.ID == "" {
		return nil, &Error{Kind: KindNotFound, Code: "OAUTH_NO_ACCOUNT"}
	}

	return &Session{
		UserID: "google:" + userInfo.ID,
		Email:  userInfo.Email,
	}, nil
}

func sessionFromAccount(resp accountResponse) *Session {
	return &Session{
		UserID:       resp.LocalID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		Email:        resp.Email,
		PhoneNumber:  resp.PhoneNumber,
	}
}
