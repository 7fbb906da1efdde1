package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/antonk9218/skdesk/internal/common"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sign := func(signToken, path, bodyOrQuery, timestamp string, headers map[string]string) string {
		return "sig-" + signToken
	}
	return NewHTTPClient(srv.URL, srv.URL, sign, WithDeviceID("dev-test"))
}

func TestExchangeGrantCode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/oauth2/v2/grant", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"status":0,"data":{"code":"grant-xyz"}}`))
	}))

	code, err := c.ExchangeGrantCode(context.Background(), "hg-token")
	require.NoError(t, err)
	require.Equal(t, "grant-xyz", code)
}

func TestExchangeGrantCode_ServiceError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":100,"msg":"token invalid"}`))
	}))

	_, err := c.ExchangeGrantCode(context.Background(), "stale")
	require.Error(t, err)
	require.Contains(t, err.Error(), "token invalid")
}

func TestExchangeSession(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/user/auth/generate_cred_by_code", r.URL.Path)
		w.Write([]byte(`{"code":0,"data":{"cred":"cred-1","token":"sign-1","userId":"user-1"}}`))
	}))

	grant, err := c.ExchangeSession(context.Background(), "grant-xyz")
	require.NoError(t, err)
	require.Equal(t, SessionGrant{Cred: "cred-1", SignToken: "sign-1", UserID: "user-1"}, grant)
}

func TestBindingRoles_FlattensChannels(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/game/player/binding", r.URL.Path)
		require.Equal(t, "cred-1", r.Header.Get("cred"))
		require.Equal(t, "sig-sign-1", r.Header.Get("sign"))
		require.Equal(t, "dev-test", r.Header.Get("dId"))
		w.Write([]byte(`{"code":0,"data":{"list":[
			{"appCode":"arknights","bindingList":[{"uid":"1001","nickName":"alt"}]},
			{"appCode":"arknights","bindingList":[{"uid":"2002","nickName":"main","isDefault":true}]}
		]}}`))
	}))

	roles, err := c.BindingRoles(context.Background(), "cred-1", "sign-1")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, "2002", roles[1].UID)
	require.True(t, roles[1].IsDefault)
}

func TestBindingRoles_ExpiredCredIsAuthError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":10002,"message":"cred expired"}`))
	}))

	_, err := c.BindingRoles(context.Background(), "cred-1", "sign-1")
	var ae *common.AuthError
	require.ErrorAs(t, err, &ae)
	require.True(t, common.IsAuthError(err))
}

func TestDo_Unauthorized(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.PlayerSnapshot(context.Background(), "cred", "sign", "2002")
	var ae *common.AuthError
	require.ErrorAs(t, err, &ae)
	require.Equal(t, http.StatusUnauthorized, ae.StatusCode)
}

func TestDo_ConnectionFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listens anymore

	c := NewHTTPClient(srv.URL, srv.URL, nil)
	_, err := c.BindingRoles(context.Background(), "cred", "sign")
	var ne *common.NetworkError
	require.ErrorAs(t, err, &ne)
	require.True(t, common.IsNetworkError(err))
}

func TestPlayerSnapshot_DecodesTypedTree(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/game/player/info", r.URL.Path)
		require.Equal(t, "2002", r.URL.Query().Get("uid"))
		w.Write([]byte(`{"code":0,"data":{
			"status":{"name":"Doctor","level":120,"ap":{"current":80,"max":130}},
			"building":{"labor":{"value":50,"maxValue":200}},
			"recruit":[{"state":2,"finishTs":1700000000}]
		}}`))
	}))

	snap, err := c.PlayerSnapshot(context.Background(), "cred-1", "sign-1", "2002")
	require.NoError(t, err)
	require.Equal(t, "Doctor", snap.Status.Name)
	require.Equal(t, 80, snap.Status.AP.Current)
	require.Equal(t, 200, snap.Building.Labor.MaxValue)
	require.Len(t, snap.Recruit, 1)
}

func TestDecodeToken_Empty(t *testing.T) {
	_, err := decodeToken([]byte(`{"token":""}`))
	var ve *common.ValidationError
	require.True(t, errors.As(err, &ve))
}
