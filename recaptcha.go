package capsolve

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"github.com/Kreppz/capsolve/logger"
)

const (
	RECAPTCHA_WIDGET_SELECTOR   = ".g-recaptcha"
	RECAPTCHA_RESPONSE_SELECTOR = "#g-recaptcha-response"
	RECAPTCHA_KEY_ATTRIBUTE     = "data-sitekey"
)

// RecaptchaSolver beats reCAPTCHA v2 widgets: reads the site key from
// the page markup, obtains a token from the source and writes it into
// the response element so the host page observes the change
type RecaptchaSolver struct {
	source TokenSource

	log zerolog.Logger
}

func NewRecaptchaSolver(source TokenSource) *RecaptchaSolver {
	return &RecaptchaSolver{
		source: source,
		log:    logger.Logger().With().Str("component", "recaptcha").Logger(),
	}
}

// Interface implementation
func (solver *RecaptchaSolver) Is(navigator Navigator) bool {
	crawler := navigator.GetCrawler()
	if crawler == nil {
		return false
	}

	return crawler.Find(RECAPTCHA_WIDGET_SELECTOR).Size() > 0 ||
		crawler.Find(RECAPTCHA_RESPONSE_SELECTOR).Size() > 0
}

// Interface implementation
func (solver *RecaptchaSolver) Solve(ctx context.Context, navigator Navigator) error {
	siteKey, err := solver.siteKey(navigator.GetCrawler())
	if err != nil {
		return err
	}

	solver.log.Info().Str("sitekey", siteKey).Str("url", navigator.GetUrl()).Msg("Solving recaptcha")

	token, err := solver.source.Solve(ctx, siteKey, navigator.GetUrl())
	if err != nil {
		return err
	}

	return solver.enterToken(navigator.GetPage(), token)
}

// Site key from the widget markup. No network calls here - a page
// without the widget is reported before the service is ever contacted
func (solver *RecaptchaSolver) siteKey(crawler *goquery.Document) (string, error) {
	if crawler == nil {
		return "", ErrNoChallenge
	}

	widget := crawler.Find(RECAPTCHA_WIDGET_SELECTOR)
	if widget.Size() == 0 {
		return "", ErrNoChallenge
	}

	key, exists := widget.First().Attr(RECAPTCHA_KEY_ATTRIBUTE)
	if !exists || key == "" {
		return "", ErrNoSiteKey
	}
	return key, nil
}

// Write the token into the response element and dispatch an input
// event so the page scripts notice it
func (solver *RecaptchaSolver) enterToken(page *rod.Page, token string) error {
	if page == nil {
		return errors.New("recaptcha: no active page")
	}

	_, err := page.Eval(`(token, selector) => {
		const field = document.querySelector(selector)
		field.value = token
		field.innerHTML = token
		field.dispatchEvent(new Event('input', { bubbles: true }))
	}`, token, RECAPTCHA_RESPONSE_SELECTOR)

	return err
}
