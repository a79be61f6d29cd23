// Package capsolve wires rod driven browser navigation to a remote
// captcha solving service: detect the challenge widget on a live page,
// obtain a solution token from the service and inject it back into the
// page so the host page observes it.
package capsolve

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
)

type Navigator interface {
	// Передаємо модель навігації
	SetModel(model *Model)

	// Відкриваємо URL
	Navigate(url string) error

	// Взяти DOM дерево після навігації
	GetCrawler() *goquery.Document

	// Live browser page. Nil until the first navigation
	GetPage() *rod.Page

	// Url of the current session
	GetUrl() string

	// Статус код навігації
	GetNavigateStatus() int

	// Last error
	GetLastError() error

	// Закрити клієнт
	Close() error

	// Set captcha solver
	SetCaptchaSolver(CaptchaSolver)

	// Set proxy getter
	SetProxyGetter(ProxyGetter)
}

// Interface for captcha solver.
//
// The navigator only drives the browser; detecting and beating a
// concrete challenge kind is the solver's job
type CaptchaSolver interface {
	// Is reports whether the current page carries a challenge this
	// solver understands
	Is(Navigator) bool

	// Solve the challenge in place
	Solve(ctx context.Context, navigator Navigator) error
}

// TokenSource obtains a solution token for a site key / page URL pair.
// Implemented by the capsolver client; other providers plug in the same way
type TokenSource interface {
	Solve(ctx context.Context, siteKey, pageURL string) (string, error)
}

type ProxyGetter interface {

	// Get proxy.
	//
	// Returns proxy as string and error if has
	GetProxy() (string, error)
}

func NewNavigator(model *Model) Navigator {
	if model == nil {
		model = &Model{}
	}

	navigator := new(ChromeNavigator)
	navigator.SetModel(model)

	return navigator
}
