package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

// TokenSource entrega o token da sessão atual (vazio quando deslogado).
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, tokens TokenSource, transport http.RoundTripper, logger *zap.Logger) *Client {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 15 * time.Second, Transport: transport},
		logger:  logger,
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginOutput, error) {
	var out LoginOutput
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, errors.New("login sem token na resposta")
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var user entity.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetCampaign(ctx context.Context, campaignID string) (*entity.Campaign, error) {
	var campaign entity.Campaign
	err := c.do(ctx, http.MethodGet, "/campaigns/"+url.PathEscape(campaignID), nil, nil, &campaign)
	if IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", entity.ErrCampaignNotFound, campaignID)
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListAvailableContacts busca os contatos que batem com os filtros e ainda não
// estão na audiência.
func (c *Client) ListAvailableContacts(ctx context.Context, campaignID string, filters entity.Filters, page, perPage int) (entity.ContactPage, error) {
	query := pageQuery(page, perPage)
	for key, value := range filters.Active() {
		query.Set(key, value)
	}

	var out entity.ContactPage
	path := fmt.Sprintf("/campaigns/%s/available-contacts", url.PathEscape(campaignID))
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return entity.ContactPage{}, err
	}
	return out.Normalized(), nil
}

func (c *Client) ListAudience(ctx context.Context, campaignID string, page, perPage int) (entity.ContactPage, error) {
	var out entity.ContactPage
	path := fmt.Sprintf("/campaigns/%s/audience", url.PathEscape(campaignID))
	if err := c.do(ctx, http.MethodGet, path, pageQuery(page, perPage), nil, &out); err != nil {
		return entity.ContactPage{}, err
	}
	return out.Normalized(), nil
}

func (c *Client) AddToAudience(ctx context.Context, campaignID string, contactIDs []string) error {
	path := fmt.Sprintf("/campaigns/%s/audience", url.PathEscape(campaignID))
	return c.do(ctx, http.MethodPost, path, nil, addAudienceRequest{ContactIDs: contactIDs}, nil)
}

// AddAllToAudience pede ao backend para incluir todos os contatos filtrados.
// Filtros vazios ou "none" não vão no payload.
func (c *Client) AddAllToAudience(ctx context.Context, campaignID string, input AddAllAudienceInput) (entity.ContactPage, error) {
	payload := addAllAudienceRequest{
		Filters:     input.Filters.Active(),
		CurrentPage: input.CurrentPage,
		PerPage:     input.PerPage,
	}

	var out entity.ContactPage
	path := fmt.Sprintf("/campaigns/%s/add-all-audience", url.PathEscape(campaignID))
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &out); err != nil {
		return entity.ContactPage{}, err
	}
	return out.Normalized(), nil
}

func (c *Client) RemoveFromAudience(ctx context.Context, campaignID, contactID string) error {
	path := fmt.Sprintf("/campaigns/%s/audience/%s", url.PathEscape(campaignID), url.PathEscape(contactID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) RemoveAllFromAudience(ctx context.Context, campaignID string) error {
	path := fmt.Sprintf("/campaigns/%s/remove-all-audience", url.PathEscape(campaignID))
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) GetImport(ctx context.Context, importID string) (*entity.ContactImport, error) {
	var out entity.ContactImport
	err := c.do(ctx, http.MethodGet, "/contacts/imports/"+url.PathEscape(importID), nil, nil, &out)
	if IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", entity.ErrImportNotFound, importID)
	}
	if err != nil {
		return nil, err
	}
	out.FieldMapping = out.FieldMapping.Normalize()
	return &out, nil
}

// SaveImportMapping envia o registro completo, sem objeto de embrulho.
func (c *Client) SaveImportMapping(ctx context.Context, importID string, mapping entity.ImportMapping) error {
	return c.do(ctx, http.MethodPut, "/contacts/imports/"+url.PathEscape(importID), nil, mapping, nil)
}

// Ping checks that the backend answers at all; any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	// 1. Monta a URL
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	// 2. Serializa o corpo
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("erro ao serializar payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	c.setHeaders(req, in != nil)

	// 3. Envia
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erro de conexão com o backend: %w", err)
	}
	defer resp.Body.Close()

	// 4. Trata erro
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("❌ backend rejeitou a requisição",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", req.Header.Get("X-Request-ID")),
		)
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	// 5. Decodifica
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("erro ao ler resposta do backend: %w", err)
	}
	return nil
}

// setHeaders centraliza os headers obrigatórios
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}
