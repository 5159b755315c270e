// internal/services/email_templates.go
package services

import (
	"bytes"
	"text/template"
)

type emailTemplate struct {
	name    string
	subject *template.Template
	body    *template.Template
}

type donationReceivedData struct {
	ProductTitle  string
	PickupAddress string
}

type receiptConfirmedData struct {
	ReceiverName  string
	ApplicationID uint
	ProductTitle  string
	ProductPrice  int
	Bytes         int64
	USD           string
	SharedAddress string
}

var (
	donationReceivedEmail = mustEmailTemplate("donation_received",
		`You received a donation on PolloPollo!`,
		`Congratulations!

A donation has just been made to fill your application for {{.ProductTitle}}. You can now go and receive the product at the shop with address: {{.PickupAddress}}. You must confirm reception of the product when you get there.

Follow these steps to confirm reception:
-Log on to pollopollo.org
-Click on your user and select "profile"
-Change "Open applications" to "Pending applications"
-Click on "Confirm Receival"

After 10-15 minutes, the confirmation goes through and the shop will be notified of your confirmation.

If you have questions or experience problems, please join https://discord.pollopollo.org or write an email to pollopollo@pollopollo.org

Sincerely,
The PolloPollo Project`)

	receiptThankYouEmail = mustEmailTemplate("receipt_thank_you",
		`Thank you for using PolloPollo`,
		`Thank you very much for using PolloPollo.

If you have suggestions for improvements or feedback, please join our Discord server: https://discord.pollopollo.org and let us know.

The PolloPollo project is created and maintained by volunteers. We rely solely on the help of volunteers to grow the platform.

You can help us help more people by asking shops to join and add products that people in need can apply for.

We hope you enjoyed using PolloPollo

Sincerely,
The PolloPollo Project`)

	receiptConfirmedEmail = mustEmailTemplate("receipt_confirmed",
		`{{.ReceiverName}} confirmed receipt of application #{{.ApplicationID}}`,
		`{{.ReceiverName}} has just confirmed receipt of the product {{.ProductTitle}} (${{.ProductPrice}}).

The application ID is #{{.ApplicationID}} and contains {{.Bytes}} bytes which is roughly ${{.USD}} at current rates.

To withdraw the money, open your Obyte Wallet and find the Smart Wallet address starting with {{.SharedAddress}}.

Thank you for using PolloPollo and if you have suggestions for improvements, please join our Discord server: https://discord.pollopollo.org and let us know.

The PolloPollo project is created and maintained by volunteers. We rely solely on the help of volunteers to grow the platform.

You can help us help more people by adding more products or encouraging other shops to join and add their products that people in need can apply for.

We hope you enjoyed using PolloPollo.

Sincerely,
The PolloPollo Project`)
)

func mustEmailTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		name:    name,
		subject: template.Must(template.New(name + "_subject").Parse(subject)),
		body:    template.Must(template.New(name + "_body").Parse(body)),
	}
}

func (t emailTemplate) render(data interface{}) (subject, body string, err error) {
	if subject, err = renderTemplate(t.subject, data); err != nil {
		return "", "", err
	}
	if body, err = renderTemplate(t.body, data); err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func renderTemplate(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
