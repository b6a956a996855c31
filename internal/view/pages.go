package view

import (
	"fmt"
	"html"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="nb">
<head><meta charset="utf-8"><title>Bjørkvang booking</title></head>
<body style="font-family: Arial, Helvetica, sans-serif; color: #183d2c;">
<h2>%s</h2>
</body>
</html>`

// DecisionPage is what a board member sees after following an action link.
func DecisionPage(approved bool) string {
	message := "Bookingen er avvist. Forespørrer er varslet."
	if approved {
		message = "Bookingen er godkjent. Bekreftelse er sendt til forespørrer."
	}
	return fmt.Sprintf(pageTemplate, message)
}

// ErrorPage renders a failure as HTML for the action-link flow.
func ErrorPage(message string) string {
	return fmt.Sprintf(pageTemplate, html.EscapeString(message))
}
