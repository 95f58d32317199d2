package demosite

// PageVersion represents a specific version of a page with its HTML content
// and the cookies it sets.
type PageVersion struct {
	HTML        string
	ContentType string
	Cookies     []CookieDef
}

// CookieDef defines a cookie to be set.
type CookieDef struct {
	Name   string
	Value  string
	MaxAge int // seconds; 0 means session cookie
}

// PageDefinition holds all versions of a single page.
type PageDefinition struct {
	Path        string
	Description string
	Versions    map[int]PageVersion
}

// GetAllPages returns all demo page definitions. Version 1 is a
// privacy-friendly shop, version 2 the same shop after it went ad-heavy.
func GetAllPages() []PageDefinition {
	return []PageDefinition{
		getHomePage(),
		getPrivacyPage(),
		getCookiePolicyPage(),
	}
}

// ===== HOME PAGE =====
func getHomePage() PageDefinition {
	return PageDefinition{
		Path:        "/",
		Description: "Shop front page with consent banner and policy links",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head><title>Demo Shop</title></head>
<body>
    <h1>Demo Shop</h1>
    <div class="consent-banner">
        We use cookies to run the shop. You can accept all, reject all, or
        choose cookies by category in the settings.
        <button>Accept all</button>
        <button>Reject all</button>
        <button>Settings</button>
    </div>
    <nav>
        <a href="/">Home</a> |
        <a href="/privacy">Privacy Policy</a> |
        <a href="/cookie-policy">Cookie Policy</a>
    </nav>
    <p>Hand-picked goods, shipped to your door.</p>
</body>
</html>`,
				Cookies: []CookieDef{
					{Name: "cart", Value: "empty"},
				},
			},
			2: {
				HTML: `<!DOCTYPE html>
<html>
<head>
    <title>Demo Shop</title>
    <script src="https://www.googletagmanager.com/gtag/js"></script>
    <script src="https://connect.facebook.net/en_US/fbevents.js"></script>
</head>
<body>
    <h1>Demo Shop</h1>
    <div class="consent-banner">
        By continuing to browse you accept our use of cookies.
        <button>OK</button>
    </div>
    <nav>
        <a href="/">Home</a> |
        <a href="/privacy">Privacy Policy</a> |
        <a href="/cookie-policy">Cookie Policy</a>
    </nav>
    <p>Hand-picked goods, shipped to your door. Now with personalized offers!</p>
</body>
</html>`,
				Cookies: []CookieDef{
					{Name: "cart", Value: "empty"},
					{Name: "_fbp", Value: "fb.1.demo", MaxAge: 800 * 24 * 3600},
					{Name: "_ga", Value: "GA1.demo", MaxAge: 730 * 24 * 3600},
				},
			},
		},
	}
}

// ===== PRIVACY POLICY =====
func getPrivacyPage() PageDefinition {
	return PageDefinition{
		Path:        "/privacy",
		Description: "Privacy policy prose the text extractor reads",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head><title>Privacy Policy - Demo Shop</title></head>
<body>
    <h1>Privacy Policy</h1>
    <p>Last updated: March 2026.</p>
    <p>We retain your personal data for 12 months after your last order,
    after which it is deleted or anonymized.</p>
    <p>You have the right to access, rectification, erasure and portability
    of your data under the GDPR.</p>
    <p>Contact our data protection officer at dpo@demoshop.example with any
    questions.</p>
    <p>Cookies are grouped into necessary, analytics and marketing
    categories; you can manage each category separately and use the
    "Reject all" button on the consent banner.</p>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html>
<head><title>Privacy Policy - Demo Shop</title></head>
<body>
    <h1>Privacy Policy</h1>
    <p>We care about your privacy. We may share information with our
    partners to improve your experience and show you relevant offers.</p>
    <p>By using this site you agree to our terms.</p>
</body>
</html>`,
			},
		},
	}
}

// ===== COOKIE POLICY =====
func getCookiePolicyPage() PageDefinition {
	return PageDefinition{
		Path:        "/cookie-policy",
		Description: "Cookie declaration table the table parser reads",
		Versions: map[int]PageVersion{
			1: {
				HTML: `<!DOCTYPE html>
<html>
<head><title>Cookie Policy - Demo Shop</title></head>
<body>
    <h1>Cookie Policy</h1>
    <table>
        <tr><th>Cookie</th><th>Duration</th><th>Purpose</th><th>Provider</th></tr>
        <tr><td>cart</td><td>Session</td><td>Necessary</td><td>demoshop.example</td></tr>
        <tr><td>_ga</td><td>90 days</td><td>Analytics</td><td>google-analytics.com</td></tr>
    </table>
</body>
</html>`,
			},
			2: {
				HTML: `<!DOCTYPE html>
<html>
<head><title>Cookie Policy - Demo Shop</title></head>
<body>
    <h1>Cookie Policy</h1>
    <table>
        <tr><th>Cookie</th><th>Duration</th><th>Purpose</th><th>Provider</th></tr>
        <tr><td>cart</td><td>Session</td><td>Necessary</td><td>demoshop.example</td></tr>
        <tr><td>_ga</td><td>2 years</td><td>Analytics</td><td>google-analytics.com</td></tr>
        <tr><td>_fbp</td><td>800 days</td><td>Marketing</td><td>facebook.com</td></tr>
        <tr><td>IDE</td><td>2 years</td><td>Advertising</td><td>doubleclick.net</td></tr>
        <tr><td>fr</td><td>3 months</td><td>Advertising</td><td>facebook.com</td></tr>
        <tr><td>tt_sessionid</td><td>13 months</td><td>Marketing</td><td>tiktok.com</td></tr>
        <tr><td>_uetsid</td><td>1 year</td><td>Advertising</td><td>bing.com</td></tr>
    </table>
</body>
</html>`,
			},
		},
	}
}
