package phones

import (
	"net/url"
	"strings"
)

// Greeting is the fixed text pre-filled into WhatsApp conversations opened
// from the site. Not operator-configurable.
const Greeting = "Merhaba, taksi hizmeti almak istiyorum."

// CallLink returns the tel: URL handed to the platform's dialer.
func CallLink(number string) string {
	return "tel:" + number
}

// WhatsAppLink returns the wa.me URL that opens a chat with the number,
// carrying the fixed greeting. The number is reduced to bare digits as
// wa.me requires.
func WhatsAppLink(number string) string {
	// Percent-encode spaces rather than using '+', matching what wa.me
	// expects in the text parameter.
	text := strings.ReplaceAll(url.QueryEscape(Greeting), "+", "%20")
	return "https://wa.me/" + digitsOf(number) + "?text=" + text
}
