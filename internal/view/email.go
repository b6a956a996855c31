package view

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"bjorkvang/internal/models"
)

const notProvided = "Ikke oppgitt"

// Builder renders requester- and board-facing notification content from
// one booking. Action links are parameterized by the store-assigned id.
type Builder struct {
	BaseURL string
	From    string
	ReplyTo string
	BoardTo []string
	Cc      []string
	Bcc     []string
}

type infoRow struct {
	label     string
	value     string
	multiline bool
}

func (b *Builder) infoRows(bk *models.Booking) []infoRow {
	return []infoRow{
		{label: "Navn", value: orFallback(bk.Requester.Name, notProvided)},
		{label: "E-post", value: orFallback(bk.Requester.Email, notProvided)},
		{label: "Telefon", value: orFallback(bk.Requester.Phone, notProvided)},
		{label: "Arrangementstype", value: orFallback(bk.EventType, notProvided)},
		{label: "Dato", value: bk.Start.Format("2006-01-02")},
		{label: "Starttid", value: bk.Start.Format("15:04")},
		{label: "Varighet (timer)", value: strconv.FormatFloat(bk.DurationHours(), 'f', -1, 64)},
		{label: "Ønskede rom", value: orFallback(strings.Join(bk.Spaces, ", "), "Ingen")},
		{label: "Tilleggsbehov", value: orFallback(strings.Join(bk.Services, ", "), "Ingen")},
		{label: "Antall deltakere", value: attendeesValue(bk.Attendees)},
		{label: "Tilleggsinformasjon", value: orFallback(bk.Message, "Ingen opplysninger"), multiline: true},
	}
}

func orFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func attendeesValue(n int) string {
	if n <= 0 {
		return notProvided
	}
	return strconv.Itoa(n)
}

func htmlValue(row infoRow) string {
	escaped := html.EscapeString(row.value)
	if row.multiline {
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	}
	return escaped
}

func (b *Builder) approveLink(id string) string {
	return fmt.Sprintf("%s/api/booking/approve?id=%s", strings.TrimRight(b.BaseURL, "/"), id)
}

func (b *Builder) rejectLink(id string) string {
	return fmt.Sprintf("%s/api/booking/reject?id=%s", strings.TrimRight(b.BaseURL, "/"), id)
}

// BoardRequestEmail tells the board a new request awaits approval.
func (b *Builder) BoardRequestEmail(bk *models.Booking) *models.Message {
	rows := b.infoRows(bk)
	approve := b.approveLink(bk.ID)
	reject := b.rejectLink(bk.ID)

	subjectParts := []string{"Ny bookingforespørsel"}
	if bk.EventType != "" {
		subjectParts = append(subjectParts, bk.EventType)
	}
	subjectParts = append(subjectParts, bk.Start.Format("2006-01-02 15:04"))
	subject := strings.Join(subjectParts, " – ")

	textLines := []string{"Det har kommet en ny bookingforespørsel som venter på godkjenning:", ""}
	for _, row := range rows {
		textLines = append(textLines, fmt.Sprintf("%s: %s", row.label, row.value))
	}
	textLines = append(textLines, "", "Godkjenn: "+approve, "Avvis: "+reject)

	var htmlRows strings.Builder
	for _, row := range rows {
		htmlRows.WriteString("<li><strong>" + html.EscapeString(row.label) + ":</strong> " + htmlValue(row) + "</li>")
	}

	htmlBody := fmt.Sprintf(`
        <p>Hei styret,</p>
        <p>Det har kommet en ny bookingforespørsel som venter på godkjenning:</p>
        <ul>%s</ul>
        <p>Bruk knappene under for å godkjenne eller avvise:</p>
        <p>
            <a href="%s" style="display:inline-block;padding:10px 16px;margin-right:12px;background:#1a823b;color:#ffffff;text-decoration:none;border-radius:4px;">Godkjenn booking</a>
            <a href="%s" style="display:inline-block;padding:10px 16px;background:#b3261e;color:#ffffff;text-decoration:none;border-radius:4px;">Avvis booking</a>
        </p>
        <p>Vennlig hilsen<br/>Bjørkvang</p>
    `, htmlRows.String(), approve, reject)

	replyTo := b.ReplyTo
	if replyTo == "" {
		replyTo = bk.Requester.Email
	}

	return &models.Message{
		To:      b.BoardTo,
		Cc:      b.Cc,
		Bcc:     b.Bcc,
		From:    b.From,
		ReplyTo: replyTo,
		Subject: subject,
		Text:    strings.Join(textLines, "\n"),
		HTML:    htmlBody,
	}
}

// ReceiptEmail confirms to the requester that the request was received.
func (b *Builder) ReceiptEmail(bk *models.Booking) *models.Message {
	date := bk.Start.Format("2006-01-02")
	clock := bk.Start.Format("15:04")

	text := fmt.Sprintf(
		"Hei %s,\n\nDin bookingforespørsel %s kl %s er mottatt og vises nå i kalenderen. Du blir kontaktet av styret for endelig bekreftelse.\n\nHilsen Bjørkvang.",
		bk.Requester.Name, date, clock)

	htmlBody := fmt.Sprintf(`
        <p>Hei %s,</p>
        <p>Din bookingforespørsel %s kl %s er mottatt og vises nå i kalenderen. Du blir kontaktet av styret for endelig bekreftelse.</p>
        <p>Hilsen Bjørkvang.</p>
    `, html.EscapeString(bk.Requester.Name), date, clock)

	return &models.Message{
		To:      []string{bk.Requester.Email},
		From:    b.From,
		Subject: "Bookingforespørsel mottatt",
		Text:    text,
		HTML:    htmlBody,
	}
}

// DecisionEmail tells the requester the board's decision.
func (b *Builder) DecisionEmail(bk *models.Booking, approved bool) *models.Message {
	date := bk.Start.Format("2006-01-02")
	clock := bk.Start.Format("15:04")

	var subject, text, htmlBody string
	if approved {
		subject = "Booking bekreftet"
		text = fmt.Sprintf(
			"Hei %s,\n\nDin booking %s kl %s er nå bekreftet.\n\nHilsen Bjørkvang.",
			bk.Requester.Name, date, clock)
		htmlBody = fmt.Sprintf(`
            <p>Hei %s,</p>
            <p>Bookingen din %s kl %s er nå <strong>bekreftet</strong>.</p>
            <p>Hilsen Bjørkvang.</p>
        `, html.EscapeString(bk.Requester.Name), date, clock)
	} else {
		subject = "Booking avvist"
		text = fmt.Sprintf(
			"Hei %s,\n\nVi kan dessverre ikke imøtekomme bookingen %s kl %s.\n\nHilsen Bjørkvang.",
			bk.Requester.Name, date, clock)
		htmlBody = fmt.Sprintf(`
            <p>Hei %s,</p>
            <p>Vi kan dessverre ikke imøtekomme bookingen %s kl %s. Bookingen er markert som <strong>avvist</strong>.</p>
            <p>Hilsen Bjørkvang.</p>
        `, html.EscapeString(bk.Requester.Name), date, clock)
	}

	return &models.Message{
		To:      []string{bk.Requester.Email},
		From:    b.From,
		Subject: subject,
		Text:    text,
		HTML:    htmlBody,
	}
}
