// Package lawapi talks to the national legal-terminology open API.  Search
// endpoints (lawSearch.do) page through term lists; service endpoints
// (lawService.do) resolve one term id to its related terms or statute
// articles.  Interactive resolution uses the XML targets, the offline
// collector uses the JSON targets, matching the upstream service's
// per-target format support.
package lawapi

import (
	"context"
	stdliberrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lawglot/lawglot/internal/domain/term"
	"github.com/lawglot/lawglot/internal/infrastructure/monitoring/logging"
	"github.com/lawglot/lawglot/pkg/errors"
)

// DailyTermItem is one everyday-term search hit.
type DailyTermItem struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Source           string `json:"source"`
	StemRelationLink string `json:"stemRelationLink"`
}

// DailyTermPage is one page of everyday-term search results.  TotalCount is
// zero when the response carries no recognizable count element.
type DailyTermPage struct {
	TotalCount int             `json:"totalCount"`
	Items      []DailyTermItem `json:"items"`
}

// DailyTermRelations maps one everyday term to its related legal terms.
type DailyTermRelations struct {
	DailyTermID   string               `json:"dailyTermId"`
	DailyTermName string               `json:"dailyTermName"`
	Source        string               `json:"source"`
	LegalTerms    []term.LegalTermLink `json:"legalTerms"`
}

// LegalTermArticles maps one legal term to the statute articles that use it.
type LegalTermArticles struct {
	LegalTermID   string         `json:"legalTermId"`
	LegalTermName string         `json:"legalTermName"`
	Articles      []term.Article `json:"articles"`
}

// DailyLink is one legal-to-everyday relation row from the collector target.
type DailyLink struct {
	DailyID      string `json:"daily_id"`
	DailyName    string `json:"daily_name"`
	RelationCode string `json:"relation_code"`
	Relation     string `json:"relation"`
}

// Client is the remote terminology surface.  An absent container element in
// a well-formed response means the id is unknown and yields an empty result,
// not an error; transport and decode failures are always reported.
type Client interface {
	// SearchDailyTerms pages everyday terms matching keyword (target dlytrm).
	SearchDailyTerms(ctx context.Context, keyword string, page, pageSize int) (*DailyTermPage, error)

	// ResolveDailyToLegal resolves an everyday-term id to its legal terms
	// (target dlytrmRlt).
	ResolveDailyToLegal(ctx context.Context, dailyTermID string) (*DailyTermRelations, error)

	// ResolveLegalToArticles resolves a legal-term id to statute articles
	// (target lstrmRltJo).
	ResolveLegalToArticles(ctx context.Context, legalTermID string) (*LegalTermArticles, error)

	// SearchLegalTerms pages the legal-term vocabulary for one syllable-group
	// code (target lstrm).  Used by the offline collector's gana sweep.
	SearchLegalTerms(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error)

	// ResolveLegalToDaily lists the everyday terms linked to a legal-term id
	// (target lstrmRlt).  Used by the offline collector.
	ResolveLegalToDaily(ctx context.Context, legalTermID string) ([]DailyLink, error)
}

// Config configures the remote client.
type Config struct {
	// BaseURL is the API root, e.g. "https://www.law.go.kr/DRF".
	BaseURL string `json:"base_url"`

	// OC is the service access key sent on every request.
	OC string `json:"oc"`

	// ConnectTimeout bounds connection establishment; ReadTimeout bounds the
	// whole exchange.
	ConnectTimeout time.Duration `json:"connect_timeout"`
	ReadTimeout    time.Duration `json:"read_timeout"`
}

type httpClient struct {
	config Config
	http   *http.Client
	logger logging.Logger
}

// ClientOption is a function option for configuring the client.
type ClientOption func(*httpClient)

// WithHTTPClient replaces the underlying HTTP client, e.g. in tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *httpClient) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient creates a remote terminology client.
func NewClient(cfg Config, logger logging.Logger, opts ...ClientOption) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.Config("base_url is required")
	}
	if cfg.OC == "" {
		return nil, errors.Config("oc access key is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 3 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 6 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &httpClient{
		config: cfg,
		http: &http.Client{
			Timeout: cfg.ReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext,
			},
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

const (
	searchPath  = "/lawSearch.do"
	servicePath = "/lawService.do"
)

func (c *httpClient) searchURL(target, format string, params url.Values) string {
	return c.buildURL(searchPath, target, format, params)
}

func (c *httpClient) serviceURL(target, format string, params url.Values) string {
	return c.buildURL(servicePath, target, format, params)
}

func (c *httpClient) buildURL(path, target, format string, params url.Values) string {
	q := url.Values{}
	q.Set("OC", c.config.OC)
	q.Set("target", target)
	q.Set("type", format)
	for key, vals := range params {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	return c.config.BaseURL + path + "?" + q.Encode()
}

// fetch performs one GET and returns the response body.  Timeouts map to
// the timeout code, other transport failures and non-200 statuses to the
// transport code.
func (c *httpClient) fetch(ctx context.Context, reqURL, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build request")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		code := errors.CodeRemoteTransport
		var netErr net.Error
		if stdliberrors.Is(err, context.DeadlineExceeded) ||
			(stdliberrors.As(err, &netErr) && netErr.Timeout()) {
			code = errors.CodeTimeout
		}
		return nil, errors.Wrap(err, code, fmt.Sprintf("%s request failed", target))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.CodeRemoteTransport, "%s request returned status %d", target, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteTransport, fmt.Sprintf("%s response read failed", target))
	}

	if c.logger != nil {
		c.logger.Debug("law api call",
			logging.String("target", target),
			logging.Int("status", resp.StatusCode),
			logging.Duration("elapsed", time.Since(start)))
	}
	return body, nil
}

func (c *httpClient) SearchDailyTerms(ctx context.Context, keyword string, page, pageSize int) (*DailyTermPage, error) {
	params := url.Values{}
	params.Set("query", keyword)
	params.Set("display", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	body, err := c.fetch(ctx, c.searchURL("dlytrm", "XML", params), "dlytrm")
	if err != nil {
		return nil, err
	}
	root, err := parseXML(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteSchema, "dlytrm response is not valid XML")
	}

	result := &DailyTermPage{TotalCount: pickTotalCount(root)}
	for _, node := range root.childrenContaining("일상용어") {
		id := node.attr("id")
		if id == "" {
			id = node.findText("id")
		}
		result.Items = append(result.Items, DailyTermItem{
			ID:               id,
			Name:             node.findText("일상용어명", "일상용어"),
			Source:           node.findText("출처"),
			StemRelationLink: node.findText("어간관계링크"),
		})
	}
	return result, nil
}

func (c *httpClient) ResolveDailyToLegal(ctx context.Context, dailyTermID string) (*DailyTermRelations, error) {
	params := url.Values{}
	params.Set("MST", dailyTermID)

	body, err := c.fetch(ctx, c.serviceURL("dlytrmRlt", "XML", params), "dlytrmRlt")
	if err != nil {
		return nil, err
	}
	root, err := parseXML(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteSchema, "dlytrmRlt response is not valid XML")
	}

	result := &DailyTermRelations{DailyTermID: dailyTermID}
	dailyNode := root.firstChildContaining("일상용어")
	if dailyNode == nil {
		return result, nil
	}

	result.DailyTermName = dailyNode.findText("일상용어명", "일상용어")
	result.Source = dailyNode.findText("출처")
	for _, rel := range dailyNode.childrenContaining("관련", "연계", "관계용어") {
		id := rel.attr("id")
		if id == "" {
			id = rel.findText("관련용어id", "법령용어id", "법령용어코드")
		}
		result.LegalTerms = append(result.LegalTerms, term.LegalTermLink{
			ID:           id,
			Name:         rel.findText("법령용어명", "법령용어"),
			RelationCode: rel.findText("용어관계코드"),
			Relation:     rel.findText("용어관계"),
			Note:         rel.findText("비고"),
		})
	}
	return result, nil
}

func (c *httpClient) ResolveLegalToArticles(ctx context.Context, legalTermID string) (*LegalTermArticles, error) {
	params := url.Values{}
	params.Set("MST", legalTermID)

	body, err := c.fetch(ctx, c.serviceURL("lstrmRltJo", "XML", params), "lstrmRltJo")
	if err != nil {
		return nil, err
	}
	root, err := parseXML(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteSchema, "lstrmRltJo response is not valid XML")
	}

	result := &LegalTermArticles{LegalTermID: legalTermID}
	legalNode := root.firstChildContaining("법령용어")
	if legalNode == nil {
		return result, nil
	}

	result.LegalTermName = legalNode.findText("법령용어명", "법령용어")
	for _, rel := range legalNode.childrenContaining("관련법령") {
		result.Articles = append(result.Articles, term.Article{
			LawID:               rel.attr("id"),
			LawName:             rel.findText("법령명", "법령이름"),
			ArticleNumber:       rel.findText("조번호", "조문번호"),
			SubArticleNumber:    rel.findText("조령지번호"),
			Content:             rel.findText("조문내용"),
			TermTypeCode:        rel.findText("용어구분코드"),
			TermType:            rel.findText("용어구분"),
			ArticleRelationLink: rel.findText("조문관계어링크", "조문관계용어링크"),
		})
	}
	return result, nil
}

func (c *httpClient) SearchLegalTerms(ctx context.Context, gana string, page, pageSize int) ([]term.LegalTermRecord, error) {
	params := url.Values{}
	params.Set("gana", gana)
	params.Set("display", strconv.Itoa(pageSize))
	params.Set("page", strconv.Itoa(page))

	body, err := c.fetch(ctx, c.searchURL("lstrm", "JSON", params), "lstrm")
	if err != nil {
		return nil, err
	}
	items, err := firstObjectList(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteSchema, "lstrm response is not valid JSON")
	}

	var records []term.LegalTermRecord
	for _, item := range items {
		records = append(records, term.LegalTermRecord{
			ID:           pickString(item, "법령용어ID", "법령용어id", "id"),
			Name:         pickString(item, "법령용어명", "법령용어"),
			Note:         pickString(item, "비고", "법령용어상세검색"),
			DictKindCode: pickString(item, "사전구분코드"),
			LawKindCode:  pickString(item, "법령종류코드"),
		})
	}
	return records, nil
}

func (c *httpClient) ResolveLegalToDaily(ctx context.Context, legalTermID string) ([]DailyLink, error) {
	params := url.Values{}
	params.Set("MST", legalTermID)

	body, err := c.fetch(ctx, c.serviceURL("lstrmRlt", "JSON", params), "lstrmRlt")
	if err != nil {
		return nil, err
	}
	items, err := firstObjectList(body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeRemoteSchema, "lstrmRlt response is not valid JSON")
	}

	var links []DailyLink
	for _, item := range items {
		link := DailyLink{
			DailyID:      pickString(item, "연계용어id", "id", "일상용어id"),
			DailyName:    pickString(item, "일상용어명", "연계용어명"),
			RelationCode: pickString(item, "용어관계코드"),
			Relation:     pickString(item, "용어관계"),
		}
		if link.DailyID == "" && link.DailyName == "" {
			continue
		}
		links = append(links, link)
	}
	return links, nil
}
