// Package testmo implements the client side of the Testmo REST API: typed
// models for the replies the overview consumes, request builders for the
// endpoints it reads, and pagination handling.
package testmo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/qa-tooling/testmo-overview/internal/rest"
)

// requestTimeout bounds a single API request. Paged listings issue one
// request per page, each with its own budget.
const requestTimeout = 30 * time.Second

// Client talks to the Testmo REST API. Create clients with NewClient, the
// zero value has no credentials.
type Client struct {
	httpClient *http.Client
	base       rest.Request
}

// NewClient creates a client for the API at apiURL authenticating with the
// given token.
func NewClient(apiURL, token string) *Client {
	base := rest.New(apiURL).
		WithHeader("Accept", "application/json").
		WithHeader("Authorization", "Bearer "+token)
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		base:       base,
	}
}

// ProjectsRequest returns the request for the project listing.
func (c *Client) ProjectsRequest() rest.Request {
	return c.base.ExtendEndpoint("projects")
}

// ProjectRequest returns the request for a single project.
func (c *Client) ProjectRequest(projectID int64) rest.Request {
	return c.base.ExtendEndpoint("projects", strconv.FormatInt(projectID, 10))
}

// ProjectRunsRequest returns the request for the run listing of a project.
func (c *Client) ProjectRunsRequest(projectID int64) rest.Request {
	return c.base.ExtendEndpoint("projects", strconv.FormatInt(projectID, 10), "runs")
}

// RunRequest returns the request for a single run.
func (c *Client) RunRequest(runID int64) rest.Request {
	return c.base.ExtendEndpoint("runs", strconv.FormatInt(runID, 10))
}

// RunResultsRequest returns the request for the result listing of a run.
func (c *Client) RunResultsRequest(runID int64) rest.Request {
	return c.base.ExtendEndpoint("runs", strconv.FormatInt(runID, 10), "results")
}

// listReply is the envelope the API wraps list replies in. Page numbers are
// 1-based, a zero value means the field was absent from the reply.
type listReply[T any] struct {
	Result   []T             `json:"result"`
	Page     int             `json:"page"`
	LastPage int             `json:"last_page"`
	NextPage json.RawMessage `json:"next_page"`
}

// singleReply is the envelope the API wraps single-entity replies in.
type singleReply[T any] struct {
	Result T `json:"result"`
}

// Collect fetches every page of a list request and returns the concatenated
// result entries. The next page is usually announced as a page number, some
// installations reply with a full URL instead; both are handled.
func Collect[T any](ctx context.Context, client *Client, request rest.Request) ([]T, error) {
	var collected []T
	for {
		var reply listReply[T]
		if err := request.GetJSON(ctx, client.httpClient, &reply); err != nil {
			return nil, err
		}
		collected = append(collected, reply.Result...)
		if reply.Page == 0 || reply.LastPage == 0 || reply.Page >= reply.LastPage {
			break
		}
		next, err := nextPageRequest(request, reply.NextPage)
		if err != nil {
			return nil, err
		}
		request = next
	}
	return collected, nil
}

func nextPageRequest(request rest.Request, nextPage json.RawMessage) (rest.Request, error) {
	var pageNumber int64
	if err := json.Unmarshal(nextPage, &pageNumber); err == nil {
		return request.WithParam("page", strconv.FormatInt(pageNumber, 10)), nil
	}
	var pageURL string
	if err := json.Unmarshal(nextPage, &pageURL); err == nil {
		return rest.FromURL(request.BaseURL, pageURL, request)
	}
	return rest.Request{}, fmt.Errorf("cannot follow next_page value '%s'", string(nextPage))
}

// Projects returns all projects of the instance.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	return Collect[Project](ctx, c, c.ProjectsRequest())
}

// Project returns a single project by ID.
func (c *Client) Project(ctx context.Context, projectID int64) (*Project, error) {
	var reply singleReply[Project]
	if err := c.ProjectRequest(projectID).GetJSON(ctx, c.httpClient, &reply); err != nil {
		return nil, err
	}
	return &reply.Result, nil
}

// Runs returns all runs of a project.
func (c *Client) Runs(ctx context.Context, projectID int64) ([]Run, error) {
	return Collect[Run](ctx, c, c.ProjectRunsRequest(projectID))
}

// Run returns a single run by ID.
func (c *Client) Run(ctx context.Context, runID int64) (*Run, error) {
	var reply singleReply[Run]
	if err := c.RunRequest(runID).GetJSON(ctx, c.httpClient, &reply); err != nil {
		return nil, err
	}
	return &reply.Result, nil
}

// Results returns all results of a run, including superseded ones. Callers
// usually only care about entries with IsLatest set.
func (c *Client) Results(ctx context.Context, runID int64) ([]Result, error) {
	return Collect[Result](ctx, c, c.RunResultsRequest(runID))
}
