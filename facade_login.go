package goOwner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrEthical07/goOwner/internal/apierror"
	"go.uber.org/zap"
)

type requestBody struct {
	data []byte
}

func jsonBody(v any) (*requestBody, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &requestBody{data: data}, nil
}

func (b *requestBody) reader() io.Reader {
	if b == nil {
		return nil
	}
	return bytes.NewReader(b.data)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse accepts both spellings of the token field.
type loginResponse struct {
	AccessToken      string          `json:"access_token"`
	AccessTokenCamel string          `json:"accessToken"`
	TokenType        string          `json:"token_type"`
	User             json.RawMessage `json:"user"`
}

func (r loginResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.AccessTokenCamel
}

// maxLoginBody bounds the decoded success body.
const maxLoginBody = 1 << 20

// Login exchanges identifier and secret for a credential. On success the credential is
// persisted and the facade becomes authenticated. On failure nothing stored changes and
// Message carries the backend's detail, or DefaultLoginMessage when it gave none.
func (f *Facade) Login(ctx context.Context, identifier, secret string) LoginResult {
	if f == nil {
		return LoginResult{Message: DefaultLoginMessage, Err: ErrFacadeNotReady}
	}
	ctx = WithRequestID(ctx, EnsureRequestID(ctx))

	body, err := jsonBody(loginRequest{Email: identifier, Password: secret})
	if err != nil {
		return f.loginError(ctx, identifier, 0, fmt.Errorf("%w: %v", ErrLoginFailed, err))
	}
	req, _, err := f.newRequest(ctx, http.MethodPost, f.config.Backend.LoginPath, body)
	if err != nil {
		return f.loginError(ctx, identifier, 0, fmt.Errorf("%w: %v", ErrLoginFailed, err))
	}

	start := f.now()
	resp, err := f.client.Do(req)
	f.observeLatency(start)
	if err != nil {
		return f.loginError(ctx, identifier, 0, fmt.Errorf("%w: %v", ErrBackendUnavailable, err))
	}
	defer resp.Body.Close()

	if apiErr := apierror.FromResponse(resp); apiErr != nil {
		f.metricInc(MetricLoginFailure)
		msg := apiErr.MessageOr(DefaultLoginMessage)
		f.logger.Info("login rejected",
			zap.Int("status", apiErr.StatusCode),
			zap.String("message", msg),
		)
		f.emitAudit(ctx, auditEventLoginFailure, false, identifier, auditReasonRejected, apiErr)
		return LoginResult{
			Message:    msg,
			StatusCode: apiErr.StatusCode,
			Err:        errors.Join(ErrLoginFailed, apiErr),
		}
	}

	var payload loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxLoginBody)).Decode(&payload); err != nil {
		return f.loginError(ctx, identifier, resp.StatusCode, fmt.Errorf("%w: %v", ErrMissingAccessToken, err))
	}
	token := payload.token()
	if token == "" {
		return f.loginError(ctx, identifier, resp.StatusCode, ErrMissingAccessToken)
	}

	f.writeMu.Lock()
	err = f.store.Set(context.WithoutCancel(ctx), f.config.Storage.Key, token)
	if err == nil {
		f.mu.Lock()
		f.epoch++
		f.state = StateAuthenticated
		f.mu.Unlock()
	}
	f.writeMu.Unlock()

	if err != nil {
		f.metricInc(MetricStorageError)
		return f.loginError(ctx, identifier, resp.StatusCode, fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}

	f.metricInc(MetricLoginSuccess)
	f.logger.Info("owner logged in")
	f.emitAudit(ctx, auditEventLoginSuccess, true, identifier, "", nil)
	return LoginResult{Success: true, StatusCode: resp.StatusCode}
}

// loginError reports a login that failed for reasons other than a backend rejection.
func (f *Facade) loginError(ctx context.Context, identifier string, status int, err error) LoginResult {
	f.metricInc(MetricLoginError)
	f.logger.Warn("login failed", zap.Int("status", status), zap.Error(err))
	f.emitAudit(ctx, auditEventLoginFailure, false, identifier, auditReasonFor(err), err)
	return LoginResult{
		Message:    DefaultLoginMessage,
		StatusCode: status,
		Err:        err,
	}
}
