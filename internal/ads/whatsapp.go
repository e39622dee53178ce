package ads

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

const whatsappBaseURL = "https://wa.me/"

// WhatsAppNumber extracts the digits of a contact link. It accepts a bare
// number ("+55 (11) 99999-0000") as well as wa.me and api.whatsapp.com links.
func WhatsAppNumber(contact string) string {
	contact = strings.TrimSpace(contact)
	if contact == "" {
		return ""
	}
	if u, err := url.Parse(contact); err == nil && u.Host != "" {
		switch strings.ToLower(strings.TrimPrefix(u.Host, "www.")) {
		case "wa.me":
			return digits(u.Path)
		case "api.whatsapp.com", "web.whatsapp.com":
			return digits(u.Query().Get("phone"))
		default:
			return ""
		}
	}
	return digits(contact)
}

// WhatsAppURL builds the click-to-chat link with the prefilled buyer message.
// It returns "" when the contact holds no number.
func WhatsAppURL(contact, title string, price decimal.Decimal) string {
	number := WhatsAppNumber(contact)
	if number == "" {
		return ""
	}
	message := fmt.Sprintf("Olá! Vi seu anúncio do %s por R$ %s no AutoLink e tenho interesse!", title, price.String())
	return whatsappBaseURL + number + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

func digits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func publicLink(base, slug string) string {
	return strings.TrimRight(base, "/") + "/" + slug
}
