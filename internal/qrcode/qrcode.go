package qrcode

import (
	"fmt"
	"net/url"
	"strings"

	qr "github.com/skip2/go-qrcode"
)

// JoinURL returns the address spectators open to watch a table.
func JoinURL(baseURL, tableID string) string {
	return fmt.Sprintf("%s/api/tables/%s", strings.TrimRight(baseURL, "/"), url.PathEscape(tableID))
}

// JoinCode creates a QR code PNG image pointing at the table.
func JoinCode(baseURL, tableID string) ([]byte, error) {
	return qr.Encode(JoinURL(baseURL, tableID), qr.Medium, 256)
}
