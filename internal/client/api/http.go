package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/antonk9218/skdesk/internal/common"
)

// appCode identifies this companion app family to the account service's
// OAuth grant endpoint.
const appCode = "4ca99fa6b56cc2ba"

// SignFunc produces the request signature for the companion data service.
// The signing algorithm itself is opaque to this client; callers inject an
// implementation. path is the URL path, bodyOrQuery the raw query string or
// JSON body, headers the header set the signature covers (platform,
// timestamp, dId, vName).
type SignFunc func(signToken, path, bodyOrQuery, timestamp string, headers map[string]string) string

// HTTPClient implements AuthClient and GameClient over the two remote
// hosts: the account service (token/grant exchange, unsigned) and the
// companion data service (signed game data).
type HTTPClient struct {
	httpc    *http.Client
	authBase string
	apiBase  string
	deviceID string
	sign     SignFunc
}

// HTTPOption customizes an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPDoer swaps the underlying http.Client. Test seam.
func WithHTTPDoer(c *http.Client) HTTPOption {
	return func(h *HTTPClient) { h.httpc = c }
}

// WithDeviceID pins the device identifier sent in signed headers.
func WithDeviceID(id string) HTTPOption {
	return func(h *HTTPClient) { h.deviceID = id }
}

// NewHTTPClient builds a client for the given hosts. sign may be nil, in
// which case signed endpoints send an empty signature and the service will
// reject them; supply a real implementation for live use.
func NewHTTPClient(authBase, apiBase string, sign SignFunc, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		httpc:    &http.Client{Timeout: 15 * time.Second},
		authBase: authBase,
		apiBase:  apiBase,
		sign:     sign,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// envelope is the uniform response wrapper both services use. A non-zero
// code is a service-level rejection even on HTTP 200.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// authEnvelope is the account service variant, which reports status
// instead of code.
type authEnvelope struct {
	Status  int             `json:"status"`
	Msg     string          `json:"msg"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// postJSON issues an unsigned POST. authService selects the response
// envelope variant: the account service reports status/msg, the data
// service code/message.
func (h *HTTPClient) postJSON(ctx context.Context, base, path string, payload any, authService bool) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, path, authService)
}

func (h *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, creds []string) (json.RawMessage, error) {
	u := h.apiBase + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	h.applySignedHeaders(req, path, query.Encode(), creds)
	return h.do(req, path, false)
}

// applySignedHeaders attaches the credential header plus the signed header
// set the data service validates. creds is {cred, signToken}.
func (h *HTTPClient) applySignedHeaders(req *http.Request, path, bodyOrQuery string, creds []string) {
	if len(creds) < 2 {
		return
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	signedHeaders := map[string]string{
		"platform":  "3",
		"timestamp": ts,
		"dId":       h.deviceID,
		"vName":     "1.0.0",
	}

	req.Header.Set("cred", creds[0])
	for k, v := range signedHeaders {
		req.Header.Set(k, v)
	}
	if h.sign != nil {
		req.Header.Set("sign", h.sign(creds[1], path, bodyOrQuery, ts, signedHeaders))
	}
}

func (h *HTTPClient) do(req *http.Request, path string, authService bool) (json.RawMessage, error) {
	resp, err := h.httpc.Do(req)
	if err != nil {
		return nil, &common.NetworkError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.NetworkError{Op: path, Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, &common.AuthError{Op: path, StatusCode: resp.StatusCode, Err: fmt.Errorf("service rejected request: %s", resp.Status)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}

	if authService {
		var env authEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, &common.ValidationError{Field: path, Err: err}
		}
		if env.Status != 0 {
			msg := env.Msg
			if msg == "" {
				msg = env.Message
			}
			return nil, fmt.Errorf("%s: service error %d: %s", path, env.Status, msg)
		}
		return env.Data, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &common.ValidationError{Field: path, Err: err}
	}
	if env.Code != 0 {
		err := fmt.Errorf("%s: service error %d: %s", path, env.Code, env.Message)
		if env.Code == 10002 || env.Code == 401 {
			return nil, &common.AuthError{Op: path, StatusCode: http.StatusUnauthorized, Err: err}
		}
		return nil, err
	}
	return env.Data, nil
}

// LoginByPassword trades phone/password for an account login token.
func (h *HTTPClient) LoginByPassword(ctx context.Context, phone, password string) (string, error) {
	data, err := h.postJSON(ctx, h.authBase, "/user/auth/v1/token_by_phone_password",
		map[string]string{"phone": phone, "password": password}, true)
	if err != nil {
		return "", err
	}
	return decodeToken(data)
}

// LoginBySMSCode trades a phone/sms-code pair for an account login token.
func (h *HTTPClient) LoginBySMSCode(ctx context.Context, phone, code string) (string, error) {
	data, err := h.postJSON(ctx, h.authBase, "/user/auth/v2/token_by_phone_code",
		map[string]string{"phone": phone, "code": code}, true)
	if err != nil {
		return "", err
	}
	return decodeToken(data)
}

func decodeToken(data json.RawMessage) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &common.ValidationError{Field: "token", Err: err}
	}
	if out.Token == "" {
		return "", &common.ValidationError{Field: "token", Err: fmt.Errorf("empty token in response")}
	}
	return out.Token, nil
}

// ExchangeGrantCode trades the login token for a one-shot OAuth grant code.
func (h *HTTPClient) ExchangeGrantCode(ctx context.Context, loginToken string) (string, error) {
	data, err := h.postJSON(ctx, h.authBase, "/user/oauth2/v2/grant",
		map[string]any{"token": loginToken, "appCode": appCode, "type": 0}, true)
	if err != nil {
		return "", err
	}
	var out struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &common.ValidationError{Field: "grantCode", Err: err}
	}
	return out.Code, nil
}

// ExchangeSession trades the grant code for the session credential set on
// the data service.
func (h *HTTPClient) ExchangeSession(ctx context.Context, grantCode string) (SessionGrant, error) {
	data, err := h.postJSON(ctx, h.apiBase, "/api/v1/user/auth/generate_cred_by_code",
		map[string]any{"code": grantCode, "kind": 1}, false)
	if err != nil {
		return SessionGrant{}, err
	}
	var out struct {
		Cred   string `json:"cred"`
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return SessionGrant{}, &common.ValidationError{Field: "sessionGrant", Err: err}
	}
	return SessionGrant{Cred: out.Cred, SignToken: out.Token, UserID: out.UserID}, nil
}

// BindingRoles lists the game roles bound to the account, flattened across
// channels.
func (h *HTTPClient) BindingRoles(ctx context.Context, cred, signToken string) ([]Role, error) {
	data, err := h.getJSON(ctx, "/api/v1/game/player/binding", nil, []string{cred, signToken})
	if err != nil {
		return nil, err
	}
	var out struct {
		List []struct {
			AppCode     string `json:"appCode"`
			BindingList []Role `json:"bindingList"`
		} `json:"list"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &common.ValidationError{Field: "bindingRoles", Err: err}
	}
	var roles []Role
	for _, app := range out.List {
		roles = append(roles, app.BindingList...)
	}
	return roles, nil
}

// PlayerSnapshot fetches the full game state for uid.
func (h *HTTPClient) PlayerSnapshot(ctx context.Context, cred, signToken, uid string) (*Snapshot, error) {
	q := url.Values{"uid": {uid}}
	data, err := h.getJSON(ctx, "/api/v1/game/player/info", q, []string{cred, signToken})
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &common.ValidationError{Field: "playerSnapshot", Err: err}
	}
	return &snap, nil
}
