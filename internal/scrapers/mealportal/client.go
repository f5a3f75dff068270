// Package mealportal logs into the meal ordering portal and extracts the weekly meal plan
// from the page it serves.
package mealportal

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"mealplan-backend/internal/components/assert"
	"mealplan-backend/internal/components/telemetry"
	"mealplan-backend/pkg/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/publicsuffix"
)

const (
	DefaultLoginUrl  = "https://www.milchbart-bestellung.de/login/"
	DefaultMealsUrl  = "https://www.milchbart-bestellung.de/kunden/essen/"
	DefaultNext      = "/kunden/essen/"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0 Safari/537.36"
	DefaultTimeout   = time.Second * 30

	tokenFieldName  = "csrfmiddlewaretoken"
	loginFormMarker = `id="login_form"`
)

const (
	report_client_login_page = "client.login-page"
	report_client_login      = "client.login"
	report_client_meals_page = "client.meals-page"
)

var tracer = otel.Tracer("scrapers/mealportal")

// Credentials are the portal login of the parent account.
type Credentials struct {
	Username string
	Password string
}

type Options struct {
	LoginUrl string
	MealsUrl string
	// Next is the redirect target submitted with the login form.
	Next      string
	UserAgent string
	// Timeout bounds every single request, 0 uses DefaultTimeout.
	Timeout time.Duration
	// CloudflareBypass wraps the transport to look like a browser TLS client.
	CloudflareBypass bool
	// Transport replaces the http transport of every session, nil keeps resty's default.
	Transport http.RoundTripper
	// Dumper, if set, receives every exchange with the portal with the password redacted.
	Dumper *restyutil.Dumper
}

func (o Options) withDefaults() Options {
	if o.LoginUrl == "" {
		o.LoginUrl = DefaultLoginUrl
	}
	if o.MealsUrl == "" {
		o.MealsUrl = DefaultMealsUrl
	}
	if o.Next == "" {
		o.Next = DefaultNext
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Client performs the login handshake with the portal. It holds no session itself,
// every call to AuthenticateAndFetch starts from a fresh cookie jar.
type Client struct {
	opts Options
	tel  telemetry.API
}

func NewClient(opts Options, tel telemetry.API) (Client, error) {
	assert.NotNil(tel, "tel")

	opts = opts.withDefaults()
	for _, raw := range []string{opts.LoginUrl, opts.MealsUrl} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return Client{}, fmt.Errorf("mealportal: invalid url %q: %w", raw, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return Client{}, fmt.Errorf("mealportal: url %q must be absolute", raw)
		}
	}

	return Client{
		opts: opts,
		tel:  telemetry.NewScopedAPI("mealportal_client", tel),
	}, nil
}

func (c Client) newSession() (*resty.Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	session := resty.New()
	session.SetCookieJar(jar)
	session.SetHeader("User-Agent", c.opts.UserAgent)
	session.SetTimeout(c.opts.Timeout)
	if c.opts.Transport != nil {
		session.SetTransport(c.opts.Transport)
	}
	if c.opts.CloudflareBypass {
		session.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(session.GetClient().Transport)
	}

	telemetry.InstrumentResty(session, "scrapers/mealportal/http", c.tel)
	c.opts.Dumper.Instrument(session)
	return session, nil
}

// AuthenticateAndFetch logs in with creds and returns the markup of the meal plan page.
//
// It makes exactly one attempt: a GET of the login page for the csrf token, a POST of the
// login form and a GET of the meal plan page, all on the same cookie jar. Failures are
// returned as a *TransportError, ErrMissingToken or ErrAuthenticationFailed.
func (c Client) AuthenticateAndFetch(ctx context.Context, creds Credentials) (string, error) {
	ctx, span := tracer.Start(ctx, "client:AuthenticateAndFetch")
	defer span.End()

	session, err := c.newSession()
	if err != nil {
		span.SetStatus(codes.Error, "failed to create session")
		return "", err
	}

	token, err := c.fetchToken(ctx, session)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	err = c.login(ctx, session, creds, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	markup, err := c.fetchMeals(ctx, session)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("meals_page.bytes", len(markup)))
	return markup, nil
}

func (c Client) fetchToken(ctx context.Context, session *resty.Client) (string, error) {
	res, err := session.R().
		SetContext(ctx).
		Get(c.opts.LoginUrl)
	if err != nil {
		err = &TransportError{Method: http.MethodGet, Url: c.opts.LoginUrl, Err: err}
		c.tel.ReportBroken(report_client_login_page, err)
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		err = &TransportError{Method: http.MethodGet, Url: c.opts.LoginUrl, StatusCode: res.StatusCode()}
		c.tel.ReportBroken(report_client_login_page, err)
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		err = fmt.Errorf("%w: parse login page: %w", ErrMissingToken, err)
		c.tel.ReportBroken(report_client_login_page, err)
		return "", err
	}

	token := doc.Find(fmt.Sprintf("input[name=%s]", tokenFieldName)).First().AttrOr("value", "")
	if token == "" {
		c.tel.ReportBroken(report_client_login_page, ErrMissingToken)
		return "", ErrMissingToken
	}
	return token, nil
}

func (c Client) login(ctx context.Context, session *resty.Client, creds Credentials, token string) error {
	res, err := session.R().
		SetContext(ctx).
		SetHeader("Referer", c.opts.LoginUrl).
		SetFormData(map[string]string{
			"username":     creds.Username,
			"password":     creds.Password,
			tokenFieldName: token,
			"next":         c.opts.Next,
		}).
		Post(c.opts.LoginUrl)
	if err != nil {
		err = &TransportError{Method: http.MethodPost, Url: c.opts.LoginUrl, Err: err}
		c.tel.ReportBroken(report_client_login, err)
		return err
	}

	if loginFormRendered(res.Body()) {
		c.tel.ReportWarning(report_client_login, ErrAuthenticationFailed, creds.Username)
		return ErrAuthenticationFailed
	}
	return nil
}

// loginFormRendered reports whether a response still shows the login form.
func loginFormRendered(body []byte) bool {
	if strings.Contains(string(body), loginFormMarker) {
		return true
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(body))
	if err != nil {
		return false
	}
	return doc.Find("form#login_form").Length() > 0
}

func (c Client) fetchMeals(ctx context.Context, session *resty.Client) (string, error) {
	res, err := session.R().
		SetContext(ctx).
		SetHeader("Referer", c.opts.LoginUrl).
		Get(c.opts.MealsUrl)
	if err != nil {
		err = &TransportError{Method: http.MethodGet, Url: c.opts.MealsUrl, Err: err}
		c.tel.ReportBroken(report_client_meals_page, err)
		return "", err
	}
	if res.StatusCode() != http.StatusOK {
		err = &TransportError{Method: http.MethodGet, Url: c.opts.MealsUrl, StatusCode: res.StatusCode()}
		c.tel.ReportBroken(report_client_meals_page, err)
		return "", err
	}
	return string(res.Body()), nil
}
