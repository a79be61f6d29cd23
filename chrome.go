package capsolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/Kreppz/capsolve/logger"
)

const (
	DEFAULT_BROWSER_NAVIGATION_TIMEOUT = 60
	DEFAULT_CAPTCHA_TIMEOUT            = time.Minute * 5
)

type ChromeNavigator struct {
	CommonNavigator

	Browser *rod.Browser
	Page    *rod.Page
}

// Interface implementation
func (navigator *ChromeNavigator) Close() error {
	var errPage, errBrowser error = navigator.closePage(), navigator.closeBrowser()
	if errPage != nil {
		return errPage
	}
	if errBrowser != nil {
		return errBrowser
	}
	return nil
}

func (navigator *ChromeNavigator) closePage() error {
	var err error
	if navigator.Page != nil {
		err = navigator.Page.Close()
		navigator.Page = nil
	}
	return err
}

func (navigator *ChromeNavigator) closeBrowser() error {
	var err error
	if navigator.Browser != nil {
		err = navigator.Browser.Close()
		navigator.Browser = nil
	}
	return err
}

// Interface implementation
func (navigator *ChromeNavigator) Navigate(url string) error {
	if err := navigator.writeAndFormatURL(url); err != nil {
		return err
	}

	navigator.initEmptyCrawler()

	return navigator.navigateUrl()
}

func (navigator *ChromeNavigator) GetPage() *rod.Page {
	return navigator.Page
}

// Evaluate script
func (navigator *ChromeNavigator) Evaluate(script string, args ...any) (string, error) {
	if err := navigator.createClientIfNeed(); err != nil {
		return "", err
	}

	result, err := navigator.Page.Eval(script, args...)
	if err != nil {
		return "", err
	}
	return result.Value.Str(), nil
}

// Rebuild the crawler from the live page.
//
// Needed after a solver mutated the DOM
func (navigator *ChromeNavigator) RefreshCrawler() error {
	if navigator.Page == nil {
		return nil
	}

	html, err := navigator.Page.HTML()
	if err != nil {
		return err
	}
	return navigator.createCrawlerFromHTML(html)
}

func (navigator *ChromeNavigator) navigateUrl() error {
	for i := 0; i < navigator.calculateTriesCount(); i++ {
		if i > 0 {
			navigator.Close()
		} else {
			if !navigator.JustCreated && navigator.Model.delayBeforeNavigate > 0 {
				time.Sleep(time.Second * time.Duration(navigator.Model.delayBeforeNavigate))
			}
		}

		if err := navigator.createClientIfNeed(); err != nil {
			navigator.LastError = err
			break
		}

		if err := navigator.WaitTotalLoad(navigator.Url); err != nil {
			navigator.LastError = err
			continue
		}

		html, err := navigator.Page.HTML()
		if err != nil {
			navigator.LastError = fmt.Errorf("error read HTML from page: %w", err)
			continue
		}

		if err := navigator.createCrawlerFromHTML(html); err != nil {
			navigator.LastError = fmt.Errorf("error create crawler from HTML: %w", err)
			continue
		}

		if err := navigator.solveCaptcha(); err != nil {
			navigator.LastError = err
			continue
		}

		if navigator.isValidResponse(navigator.NavigateStatus) {
			break
		}
	}

	return navigator.LastError
}

// Wait navigation response and sign page loaded
func (navigator *ChromeNavigator) WaitTotalLoad(url ...string) error {
	response, err := navigator.waitResponseAndLoad(url...)
	if err != nil {
		return err
	}

	navigator.LastError = nil
	navigator.NavigateStatus = response.Response.Status
	return nil
}

func (navigator *ChromeNavigator) waitResponseAndLoad(url ...string) (*proto.NetworkResponseReceived, error) {
	// Статус відповіді на запит
	response := proto.NetworkResponseReceived{}

	// Функція, що спрацює лише коли отримаємо відповідь на запит
	waitResponse := navigator.Page.WaitEvent(&response)

	// Таймаут очікування відповіді
	timeoutResponse := time.NewTimer(navigator.getPageLoadTimeout())

	// Канал сигналізації, що відповідь від сервера отримана
	responseRecived := make(chan any, 1)

	// Таймаут завантаження сторінки.
	// Запускається лише після того як отримана відповідь від сервера
	timeoutLoad := time.NewTimer(navigator.getPageLoadTimeout())
	timeoutLoad.Stop()

	// Канал сигналізації, що сторінка завантажена
	waitLoad := make(chan error)

	go func() {
		waitResponse()
		responseRecived <- nil
		timeoutLoad.Reset(navigator.getPageLoadTimeout())
	}()

	if navigator.Model.navigationSelector == "" {
		waitEventLoad := navigator.Page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

		go func() {
			waitEventLoad()

			// Якщо подія завантаження сторінки сталася раніше ніж
			// оброблений статус навігації - чекаємо статус навігації
			<-responseRecived

			waitLoad <- nil
		}()
	} else {
		go func() {
			waitLoad <- navigator.Page.WaitElementsMoreThan(navigator.Model.navigationSelector, 0)
		}()
	}

	if len(url) > 0 {
		time.Sleep(time.Millisecond * 10)
		if err := navigator.Page.Navigate(url[0]); err != nil {
			return nil, err
		}
	}

	select {
	case err := <-waitLoad:
		return &response, err
	case <-timeoutResponse.C:
		log := logger.Logger()
		log.Warn().Str("url", navigator.Url).Msg("Timeout response")
		return nil, errors.New("timeout response")
	case <-timeoutLoad.C:
		log := logger.Logger()
		log.Warn().Str("url", navigator.Url).Msg("Timeout navigation")
		return nil, errors.New("timeout navigation")
	}
}

// Get page loading timeout
func (navigator *ChromeNavigator) getPageLoadTimeout() time.Duration {
	if navigator.Model.navigationTimeout > 0 {
		return time.Duration(navigator.Model.navigationTimeout) * time.Second
	}
	return time.Second * DEFAULT_BROWSER_NAVIGATION_TIMEOUT
}

// If page is nil - create new page
func (navigator *ChromeNavigator) createClientIfNeed() error {
	if navigator.Page != nil {
		navigator.JustCreated = false
		return nil
	}

	if navigator.Browser == nil {
		var err error
		navigator.Browser, err = navigator.createBrowser()
		if err != nil {
			return err
		}
	}

	// Stealth page so the challenge widget sees a regular browser
	page, err := stealth.Page(navigator.Browser)
	if err != nil {
		return err
	}

	if navigator.Model.userAgent != "" {
		override := proto.NetworkSetUserAgentOverride{UserAgent: navigator.Model.userAgent}
		if err := page.SetUserAgent(&override); err != nil {
			return err
		}
	}

	navigator.Page = page
	navigator.JustCreated = true

	return nil
}

func (navigator *ChromeNavigator) createBrowser() (*rod.Browser, error) {
	l := launcher.New().
		Headless(!navigator.Model.visible).
		Set("blink-settings", fmt.Sprintf("imagesEnabled=%t", navigator.Model.showImages))

	if navigator.PrxGetter != nil {
		proxyvalue, err := navigator.PrxGetter.GetProxy()
		if err == nil {
			l.Proxy(proxyvalue)
		}
	}

	u, err := l.Launch()
	if err != nil {
		return nil, err
	}

	return rod.New().ControlURL(u).MustConnect().NoDefaultDevice(), nil
}

// Solve captcha if presented
func (navigator *ChromeNavigator) solveCaptcha() error {
	if navigator.CptchSolver == nil || !navigator.CptchSolver.Is(navigator) {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), navigator.calculateCaptchaTimeout())
	defer cancel()

	if err := navigator.CptchSolver.Solve(ctx, navigator); err != nil {
		return err
	}

	return navigator.RefreshCrawler()
}
