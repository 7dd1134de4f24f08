package spreadsheet

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const DefaultRange = "A:D"

var ErrFetch = errors.New("failed to fetch spreadsheet")

// Client reads trend sheets on behalf of an admin using the admin's stored
// Google token.
type Client struct {
	Tokens TokenStore
	Range  string

	// HTTPClient and Endpoint override the transport and API root; tests
	// point them at a local server.
	HTTPClient *http.Client
	Endpoint   string
}

func NewClient(tokens TokenStore, readRange string) *Client {
	if readRange == "" {
		readRange = DefaultRange
	}
	return &Client{Tokens: tokens, Range: readRange}
}

func (c *Client) service(ctx context.Context, tok *oauth2.Token) (*sheets.Service, error) {
	if c.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
	}
	opts := []option.ClientOption{
		option.WithHTTPClient(oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))),
	}
	if c.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.Endpoint))
	}
	return sheets.NewService(ctx, opts...)
}

// FetchAndParse downloads the configured range of the sheet at sheetURL and
// parses it with ParseRows.
func (c *Client) FetchAndParse(ctx context.Context, adminID uuid.UUID, sheetURL string) (*Series, error) {
	id, err := ExtractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, err
	}

	stored, err := c.Tokens.Token(ctx, adminID)
	if err != nil {
		return nil, err
	}

	srv, err := c.service(ctx, &oauth2.Token{
		AccessToken: stored.AccessToken,
		TokenType:   stored.TokenType,
		Expiry:      stored.ExpiresAt,
	})
	if err != nil {
		return nil, errors.Wrap(ErrFetch, err.Error())
	}

	readRange := c.Range
	if readRange == "" {
		readRange = DefaultRange
	}
	resp, err := srv.Spreadsheets.Values.Get(id, readRange).Context(ctx).Do()
	if err != nil {
		logrus.WithError(err).WithField("spreadsheet_id", id).Warn("spreadsheet fetch failed")
		return nil, errors.Wrap(ErrFetch, err.Error())
	}

	return ParseRows(resp.Values)
}
