package dify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
)

// Console API operations. Session handling rules:
//   - login happens lazily on the first console-scoped call
//   - a 401 on a console call triggers exactly one re-login-and-retry
//   - repeated rejection propagates as *AuthError

// Login authenticates against the console API and caches the session token.
// Usually invoked lazily; exported for credential validation.
func (c *Client) Login(ctx context.Context) error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.loginLocked(ctx)
}

// loginLocked performs the login call. Caller holds sessionMu.
func (c *Client) loginLocked(ctx context.Context) error {
	if !c.cfg.HasConsoleCredentials() {
		return &AuthError{Reason: "email and password required for console API", Err: domain.ErrConsoleCredentialsMissing}
	}

	c.log.Debug("logging in to console API as %s", c.cfg.Email)

	body := loginRequest{Email: c.cfg.Email, Password: c.cfg.Password}
	resp, err := send(ctx, c.console, http.MethodPost, c.cfg.ConsoleBaseURL()+epConsoleLogin, nil, body, nil)
	if err != nil {
		return &TransportError{Op: "console login", Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: "read login response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AuthError{
			Reason: "login rejected",
			Err:    &APIError{Status: resp.StatusCode, Body: string(respBody), URL: resp.Request.URL.String()},
		}
	}

	var parsed loginResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return &AuthError{Reason: "malformed login response", Err: err}
	}
	if parsed.Data.AccessToken == "" {
		return &AuthError{Reason: "no access token in login response"}
	}

	c.session = parsed.Data.AccessToken
	return nil
}

// consoleRequest executes one console-API call, logging in lazily and
// re-logging in once on a 401. Returns the raw response body.
func (c *Client) consoleRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.session == "" {
		if err := c.loginLocked(ctx); err != nil {
			return nil, err
		}
	}

	status, respBody, err := c.consoleDoLocked(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		// Session expired; one fresh login, one retry.
		c.log.Debug("console session rejected, re-logging in")
		c.session = ""
		if err := c.loginLocked(ctx); err != nil {
			return nil, err
		}
		status, respBody, err = c.consoleDoLocked(ctx, method, path, query, body)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, &AuthError{Reason: "console session rejected after re-login"}
		}
	}

	if status < 200 || status >= 300 {
		return nil, &APIError{Status: status, Body: string(respBody), URL: c.cfg.ConsoleBaseURL() + path}
	}
	return respBody, nil
}

// consoleDoLocked performs a single exchange with the cached session token.
// Caller holds sessionMu.
func (c *Client) consoleDoLocked(ctx context.Context, method, path string, query url.Values, body any) (int, []byte, error) {
	headers := map[string]string{"Authorization": "Bearer " + c.session}
	resp, err := send(ctx, c.console, method, c.cfg.ConsoleBaseURL()+path, query, body, headers)
	if err != nil {
		return 0, nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: "read response from " + path, Err: err}
	}
	return resp.StatusCode, respBody, nil
}

// ListApps fetches one page of apps.
func (c *Client) ListApps(ctx context.Context, page, limit int) (driven.AppPage, error) {
	if err := validatePage(page, limit); err != nil {
		return driven.AppPage{}, err
	}

	respBody, err := c.consoleRequest(ctx, http.MethodGet, epConsoleApps, pageQuery(page, limit), nil)
	if err != nil {
		return driven.AppPage{}, err
	}

	var resp appListResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return driven.AppPage{}, fmt.Errorf("decode apps listing: %w", err)
	}

	out := driven.AppPage{HasMore: resp.HasMore}
	for _, a := range resp.Data {
		out.Apps = append(out.Apps, a.toDomain())
	}
	return out, nil
}

// ListAllApps walks every app page.
func (c *Client) ListAllApps(ctx context.Context) ([]domain.App, error) {
	var all []domain.App
	for page := 1; ; page++ {
		p, err := c.ListApps(ctx, page, DefaultAppsPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Apps...)
		if !p.HasMore {
			break
		}
	}
	c.log.Debug("listed %d apps from %s", len(all), c.cfg.ConsoleBaseURL())
	return all, nil
}

// ExportAppDSL fetches an app's serialized DSL text.
func (c *Client) ExportAppDSL(ctx context.Context, appID string, includeSecret bool) (string, error) {
	query := url.Values{"include_secret": []string{strconv.FormatBool(includeSecret)}}
	respBody, err := c.consoleRequest(ctx, http.MethodGet, fmt.Sprintf(epConsoleAppExport, appID), query, nil)
	if err != nil {
		return "", err
	}

	// Newer servers wrap the DSL in a JSON envelope; older ones return it raw.
	var envelope struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Data != "" {
		return envelope.Data, nil
	}
	return string(respBody), nil
}

// ImportAppDSL creates an app from DSL text and returns the new app id.
func (c *Client) ImportAppDSL(ctx context.Context, dsl string) (string, error) {
	body := importAppRequest{Mode: "yaml-content", YAMLContent: dsl}
	respBody, err := c.consoleRequest(ctx, http.MethodPost, epConsoleAppImport, nil, body)
	if err != nil {
		return "", err
	}

	var resp importAppResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("decode import response: %w", err)
	}
	return resp.Data.App.ID, nil
}
