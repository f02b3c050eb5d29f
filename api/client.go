// Package api is the request pipeline every backend call goes through.
//
// The pipeline resolves paths against the configured base address, sends JSON
// (or buffered multipart) bodies, attaches the stored access token as a bearer
// credential and, when the backend answers 401, performs exactly one
// refresh-and-retry. If the refresh itself fails the credential store is
// cleared and the navigator is sent to the login entry point.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/metrics"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const (
	// LoginPath is the client-side entry point visited after an irrecoverable
	// authorization failure.
	LoginPath = "/login"

	DefaultRefreshPath = "auth/refresh/"

	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-ID"
	maxBodySize     = 10 << 20
)

// Doer issues a request through the pipeline and decodes a successful JSON
// response into out (when out is non-nil).
type Doer interface {
	Do(ctx context.Context, req *Request, out any) (*Response, error)
}

// Navigator performs client-side navigation.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// Request describes one backend call. Body is JSON-encoded unless it is a
// *Multipart.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

// Response is the raw backend answer of the final attempt.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	Outcome Outcome
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client is the request pipeline. It is safe for concurrent use; the
// credential store is the only state shared between requests.
type Client struct {
	baseURL     string
	refreshPath string
	httpClient  *http.Client
	store       token.Store
	navigator   Navigator
	logger      zerolog.Logger

	expiredHooks []func(ctx context.Context)
	hooksLock    sync.RWMutex
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithNavigator sets where forced logouts navigate.
func WithNavigator(n Navigator) ClientOption {
	return func(c *Client) {
		c.navigator = n
	}
}

// WithRefreshPath overrides the refresh endpoint path.
func WithRefreshPath(path string) ClientOption {
	return func(c *Client) {
		c.refreshPath = path
	}
}

// WithLogger sets the logger used for request outcomes.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a pipeline for the backend at baseURL using store for
// credentials.
func New(baseURL string, store token.Store, options ...ClientOption) (*Client, error) {
	if store == nil {
		return nil, errors.New("[api.New] credential store is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("[api.New] invalid base URL %q", baseURL)
	}

	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		refreshPath: DefaultRefreshPath,
		httpClient:  http.DefaultClient,
		store:       store,
		navigator:   NavigatorFunc(func(string) {}),
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved backend address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionExpired registers fn to run after a failed refresh has cleared the
// credential store and before the pipeline navigates to the login page.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.hooksLock.Lock()
	defer c.hooksLock.Unlock()
	c.expiredHooks = append(c.expiredHooks, fn)
}

// Do implements Doer.
func (c *Client) Do(ctx context.Context, req *Request, out any) (*Response, error) {
	start := time.Now()

	prepared, err := c.prepare(req)
	if err != nil {
		return nil, err
	}

	bearer, err := c.store.Get(ctx, token.Access)
	if err != nil && !errors.Is(err, errors.ErrTokenNotFound) {
		c.logger.Warn().Err(err).Msg("failed to read access token, sending request without it")
	}

	resp, outcome, err := c.execute(ctx, prepared, bearer, false)
	if resp != nil {
		resp.Outcome = outcome
	}

	metrics.APIRequestsTotal.WithLabelValues(outcome.String()).Inc()
	metrics.APIRequestDuration.WithLabelValues(outcome.String()).Observe(time.Since(start).Seconds())
	event := c.logger.Debug()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("method", prepared.method).
		Str("path", req.Path).
		Str("outcome", outcome.String()).
		Dur("elapsed", time.Since(start)).
		Msg("api request")

	if err != nil {
		return resp, err
	}
	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return resp, fmt.Errorf("[api.Do] failed to decode %s %s response: %w", prepared.method, req.Path, err)
		}
	}
	return resp, nil
}

// execute sends the request and handles an authorization failure. retried is
// true only for the single re-issue that follows a successful refresh, so a
// second 401 is propagated instead of refreshing again.
func (c *Client) execute(ctx context.Context, req *preparedRequest, bearer string, retried bool) (*Response, Outcome, error) {
	resp, err := c.attempt(ctx, req, bearer)
	if err != nil {
		return nil, attemptOutcome(retried, OutcomeFailed), err
	}
	if resp.IsSuccess() {
		return resp, attemptOutcome(retried, OutcomeOK), nil
	}

	apiErr := newAPIError(resp.Status, resp.Body)
	if resp.Status != http.StatusUnauthorized || retried {
		return resp, attemptOutcome(retried, OutcomeFailed), apiErr
	}

	access, err := c.renewAccess(ctx)
	if errors.Is(err, errors.ErrNoRefreshToken) {
		return resp, OutcomeFailed, apiErr
	}
	if err != nil {
		return resp, OutcomeTerminal, err
	}
	return c.execute(ctx, req, access, true)
}

func attemptOutcome(retried bool, outcome Outcome) Outcome {
	if retried {
		return OutcomeRetried
	}
	return outcome
}

// renewAccess trades the stored refresh token for a new access token. A missing
// refresh token yields errors.ErrNoRefreshToken; a rejected refresh expires the
// session and yields an error wrapping errors.ErrSessionExpired.
func (c *Client) renewAccess(ctx context.Context) (string, error) {
	refresh, err := c.store.Get(ctx, token.Refresh)
	if err != nil {
		metrics.APIRefreshTotal.WithLabelValues("missing").Inc()
		return "", errors.Wrapf(errors.ErrNoRefreshToken, "[api] cannot refresh")
	}

	access, err := c.refresh(ctx, refresh)
	if err != nil {
		metrics.APIRefreshTotal.WithLabelValues("failure").Inc()
		c.logger.Warn().Err(err).Msg("access token refresh failed, ending session")
		c.expireSession(ctx)
		return "", fmt.Errorf("%w: %w", errors.ErrSessionExpired, err)
	}

	if err := c.store.SetAccess(ctx, access); err != nil {
		return "", errors.Wrapf(err, "[api] failed to store refreshed access token")
	}
	metrics.APIRefreshTotal.WithLabelValues("success").Inc()
	return access, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// refresh calls the refresh endpoint directly, bypassing the retry branch.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	body, err := json.Marshal(refreshRequest{Refresh: refreshToken})
	if err != nil {
		return "", err
	}
	req := &preparedRequest{
		method:      http.MethodPost,
		url:         c.resolve(c.refreshPath, nil),
		body:        body,
		contentType: contentTypeJSON,
	}

	resp, err := c.attempt(ctx, req, "")
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrRefreshFailed, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: %w", errors.ErrRefreshFailed, newAPIError(resp.Status, resp.Body))
	}

	var rr refreshResponse
	if err := json.Unmarshal(resp.Body, &rr); err != nil || rr.Access == "" {
		return "", fmt.Errorf("%w: response carries no access token", errors.ErrRefreshFailed)
	}
	return rr.Access, nil
}

// expireSession is the forced logout that follows an irrecoverable refresh
// failure: both tokens are cleared, hooks run, then the navigator is sent to
// the login page. In-flight requests are not cancelled.
func (c *Client) expireSession(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear credential store")
	}

	c.hooksLock.RLock()
	hooks := append([]func(context.Context){}, c.expiredHooks...)
	c.hooksLock.RUnlock()
	for _, hook := range hooks {
		hook(ctx)
	}

	c.navigator.Navigate(LoginPath)
}

type preparedRequest struct {
	method      string
	url         string
	header      http.Header
	body        []byte
	contentType string
}

// prepare resolves the URL and buffers the body so the retry can replay it.
func (c *Client) prepare(req *Request) (*preparedRequest, error) {
	if req == nil {
		return nil, errors.Wrapf(errors.ErrInvalidArgs, "[api] nil request")
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	p := &preparedRequest{
		method: method,
		url:    c.resolve(req.Path, req.Query),
		header: req.Header,
	}

	switch body := req.Body.(type) {
	case nil:
	case *Multipart:
		data, contentType, err := body.encode()
		if err != nil {
			return nil, fmt.Errorf("[api] failed to encode multipart body: %w", err)
		}
		p.body, p.contentType = data, contentType
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("[api] failed to encode request body: %w", err)
		}
		p.body, p.contentType = data, contentTypeJSON
	}
	return p, nil
}

// resolve joins path onto the base URL the way the backend expects: a leading
// slash on path is optional and absolute URLs are used as they are.
func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + "/" + strings.TrimLeft(path, "/")
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

// attempt performs a single HTTP exchange.
func (c *Client) attempt(ctx context.Context, req *preparedRequest, bearer string) (*Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, fmt.Errorf("[api] failed to build request: %w", err)
	}
	for k, values := range req.header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if bearer != "" {
		(&oauth2.Token{AccessToken: bearer, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("[api] %s %s: %w", req.method, req.url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("[api] failed to read %s %s response: %w", req.method, req.url, err)
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
