package services

import (
	"bytes"
	"fmt"
	"html/template"
)

type emailData struct {
	Org         string
	Member      string
	Week        int
	Amount      string
	Date        string
	DueDate     string
	Method      string
	LoanCode    string
	Total       string
	Paid        string
	Outstanding string
	Rate        string
	Months      int
	PaidOff     bool
	Raffle      string
	Number      string
}

const emailLayout = `<!DOCTYPE html>
<html><body style="margin:0;padding:0;background:#f4f6f9;font-family:Arial,Helvetica,sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px;">
<table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">
<tr><td style="background:#0A2342;padding:24px;text-align:center;">
<h1 style="margin:0;color:#ffffff;font-size:26px;">{{.Org}}</h1></td></tr>
<tr><td style="padding:24px;color:#333333;font-size:15px;line-height:1.5;">{{template "body" .}}</td></tr>
<tr><td style="background:#f0f0f0;padding:16px;text-align:center;color:#777777;font-size:12px;">
Este es un mensaje automático de {{.Org}}. Por favor no responda a este correo.</td></tr>
</table></td></tr></table></body></html>`

var (
	weeklyPaymentTemplate = mustEmail(`{{define "body"}}
<h2 style="color:#0A2342;margin:0 0 10px 0;">¡Pago recibido!</h2>
<p>Hola <strong>{{.Member}}</strong>,</p>
<p>Confirmamos el registro de tu aporte de la <strong>semana {{.Week}}</strong>.</p>
<table cellpadding="6" style="border:1px solid #dddddd;border-collapse:collapse;">
<tr><td>Valor</td><td><strong>{{.Amount}}</strong></td></tr>
<tr><td>Fecha</td><td>{{.Date}}</td></tr>
<tr><td>Forma de pago</td><td>{{.Method}}</td></tr>
</table>
<p>Adjuntamos el recibo en PDF.</p>{{end}}`)

	installmentTemplate = mustEmail(`{{define "body"}}
{{if .PaidOff}}<h2 style="color:#15803d;margin:0 0 10px 0;">¡Préstamo completado!</h2>
{{else}}<h2 style="color:#0A2342;margin:0 0 10px 0;">Abono registrado</h2>{{end}}
<p>Hola <strong>{{.Member}}</strong>,</p>
<p>Registramos un abono al préstamo <strong>{{.LoanCode}}</strong>.</p>
<table cellpadding="6" style="border:1px solid #dddddd;border-collapse:collapse;">
<tr><td>Valor del abono</td><td><strong>{{.Amount}}</strong></td></tr>
<tr><td>Fecha</td><td>{{.Date}}</td></tr>
<tr><td>Forma de pago</td><td>{{.Method}}</td></tr>
<tr><td>Total del préstamo</td><td>{{.Total}}</td></tr>
<tr><td>Total pagado</td><td>{{.Paid}}</td></tr>
<tr><td>Saldo pendiente</td><td>{{.Outstanding}}</td></tr>
</table>
{{if .PaidOff}}<p>Adjuntamos tu recibo y tu certificado de <strong>paz y salvo</strong>.</p>
{{else}}<p>Adjuntamos el recibo del abono.</p>{{end}}{{end}}`)

	loanCreatedTemplate = mustEmail(`{{define "body"}}
<h2 style="color:#0A2342;margin:0 0 10px 0;">¡Nuevo Préstamo Registrado!</h2>
<p>Hola <strong>{{.Member}}</strong>,</p>
<p>Te informamos que se ha registrado exitosamente un préstamo a tu nombre en nuestra Natillera.</p>
<table cellpadding="6" style="border:1px solid #dddddd;border-collapse:collapse;">
<tr><td>Código</td><td><strong>{{.LoanCode}}</strong></td></tr>
<tr><td>Monto</td><td>{{.Amount}}</td></tr>
<tr><td>Tasa de interés</td><td>{{.Rate}}%</td></tr>
<tr><td>Plazo</td><td>{{.Months}} meses</td></tr>
<tr><td>Total a pagar</td><td>{{.Total}}</td></tr>
<tr><td>Fecha de aprobación</td><td>{{.Date}}</td></tr>
<tr><td>Fecha de vencimiento</td><td>{{.DueDate}}</td></tr>
</table>
<p>Si no reconoces esta solicitud, comunícate de inmediato con la administración.</p>{{end}}`)

	raffleWinnerTemplate = mustEmail(`{{define "body"}}
<h2 style="color:#d97706;margin:0 0 10px 0;">¡FELICITACIONES!</h2>
<p>Hola <strong>{{.Member}}</strong>,</p>
<p>Nos complace informarte que eres el feliz ganador del sorteo de la rifa <strong>"{{.Raffle}}"</strong>.</p>
<p style="font-size:32px;text-align:center;color:#d97706;"><strong>{{.Number}}</strong></p>
<p>Fecha del sorteo: {{.Date}}</p>
<p>Por favor ponte en contacto con los administradores de la Natillera para coordinar la entrega de tu premio.</p>
<p>¡Gracias por participar y apoyar a la Natillera!</p>{{end}}`)
)

func mustEmail(body string) *template.Template {
	t := template.Must(template.New("layout").Parse(emailLayout))
	return template.Must(t.Parse(body))
}

func renderEmail(t *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	return buf.String(), nil
}
