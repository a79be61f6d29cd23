package capsolve

// Navigation model
type Model struct {
	// Browser window visible
	visible bool

	// Load images
	showImages bool

	// User agent for the browser
	userAgent string

	// Navigation timeout in seconds
	navigationTimeout int

	// Pause before navigation in seconds
	delayBeforeNavigate int

	// Selector that signals the page is loaded. When empty we wait the
	// page load event instead
	navigationSelector string

	// How long one captcha solve may take, in seconds
	captchaTimeout int
}

func (m *Model) SetVisible(visible bool) *Model {
	m.visible = visible
	return m
}

func (m *Model) SetShowImages(show bool) *Model {
	m.showImages = show
	return m
}

func (m *Model) SetUserAgent(userAgent string) *Model {
	m.userAgent = userAgent
	return m
}

func (m *Model) SetNavigationTimeout(seconds int) *Model {
	m.navigationTimeout = seconds
	return m
}

func (m *Model) SetDelayBeforeNavigate(seconds int) *Model {
	m.delayBeforeNavigate = seconds
	return m
}

func (m *Model) SetNavigationSelector(selector string) *Model {
	m.navigationSelector = selector
	return m
}

func (m *Model) SetCaptchaTimeout(seconds int) *Model {
	m.captchaTimeout = seconds
	return m
}
