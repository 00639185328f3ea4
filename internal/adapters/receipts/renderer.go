// Package receipts renders the PDF documents handed to members: weekly
// receipts, loan installment receipts and the paz y salvo certificate.
package receipts

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"natillera-miahorro/internal/adapters/persistence/models"
	"natillera-miahorro/internal/core/ledger"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// Org identifies the issuing organization on every document
type Org struct {
	Name string
	City string
	NIT  string
}

// Renderer produces PDF bytes with fpdf
type Renderer struct {
	org Org
	now func() time.Time
}

// NewRenderer creates a renderer for org
func NewRenderer(org Org) *Renderer {
	if org.Name == "" {
		org.Name = "Natillera MiAhorro"
	}
	return &Renderer{org: org, now: time.Now}
}

const (
	pageMargin = 20.0
	boxWidth   = 176.0
	labelWidth = 38.0
	lineHeight = 8.0
	colRight   = 110.0
)

type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (r *Renderer) newDocument(title string) *document {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle(title, true)
	pdf.SetAuthor(r.org.Name, true)
	pdf.SetCreationDate(r.now())
	pdf.AddPage()
	return &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) header(title string, issued time.Time) {
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 6, d.tr("Fecha de Emisión: "+longDate(issued)), "", 1, "R", false, 0, "")
	d.pdf.Ln(4)
}

// field writes a bold label and its value at x on the current line
func (d *document) field(x, y float64, label, value string) {
	d.pdf.SetXY(x, y)
	d.pdf.SetFont("Helvetica", "B", 11)
	d.pdf.CellFormat(labelWidth, lineHeight, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.CellFormat(colRight-labelWidth-pageMargin-2, lineHeight, d.tr(value), "", 0, "L", false, 0, "")
}

func (d *document) amount(x, y float64, label string, value decimal.Decimal) {
	d.pdf.SetXY(x, y)
	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.CellFormat(labelWidth+10, lineHeight, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 13)
	d.pdf.CellFormat(60, lineHeight, ledger.FormatCOP(value), "", 0, "L", false, 0, "")
}

func (d *document) signatures(left, right string) {
	y := d.pdf.GetY() + 30
	d.pdf.SetLineWidth(0.3)
	d.pdf.Line(pageMargin+5, y, pageMargin+75, y)
	d.pdf.Line(colRight, y, colRight+70, y)
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.SetXY(pageMargin+5, y+1)
	d.pdf.CellFormat(70, 6, d.tr(left), "", 0, "C", false, 0, "")
	d.pdf.SetXY(colRight, y+1)
	d.pdf.CellFormat(70, 6, d.tr(right), "", 1, "C", false, 0, "")
}

func (d *document) footer(text string) {
	d.pdf.Ln(12)
	d.pdf.SetFont("Helvetica", "I", 9)
	d.pdf.SetTextColor(120, 120, 120)
	d.pdf.CellFormat(0, 6, d.tr(text), "", 1, "C", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WeeklyReceipt renders the receipt of one weekly contribution
func (r *Renderer) WeeklyReceipt(member *models.Member, payment *models.WeeklyPayment) ([]byte, error) {
	d := r.newDocument("Recibo " + payment.ReceiptNumber())
	d.header(strings.ToUpper(r.org.Name)+" - RECIBO DE PAGO", r.now())

	top := d.pdf.GetY()
	d.pdf.Rect(pageMargin, top, boxWidth, 62, "D")

	y := top + 5
	d.field(pageMargin+4, y, "Recibo No:", payment.ReceiptNumber())
	d.field(colRight, y, "Semana No:", fmt.Sprintf("%d", payment.Semana))
	y += lineHeight
	d.field(pageMargin+4, y, "Socio:", member.FullName())
	y += lineHeight
	d.field(pageMargin+4, y, "Documento:", member.Documento)
	y += lineHeight * 1.5
	d.amount(pageMargin+4, y, "Valor Pagado:", payment.Valor)
	y += lineHeight * 1.5
	d.field(pageMargin+4, y, "Fecha Pago:", optionalDate(payment.FechaPago))
	d.field(colRight, y, "Forma Pago:", orDefault(payment.FormaPago, "Efectivo"))
	y += lineHeight
	d.field(pageMargin+4, y, "Pagador:", orDefault(payment.NombrePagador, member.ShortName()))

	d.pdf.SetY(top + 62)
	receiver := "Firma Recibe (Tesorero/Admin)"
	if payment.FirmaRecibe != "" {
		receiver = "Recibe: " + payment.FirmaRecibe
	}
	d.signatures(receiver, "Firma Pagador (Socio)")
	d.footer("Gracias por su cumplimiento.")

	return d.bytes()
}

// InstallmentReceipt renders the receipt of one loan installment with the
// balance left after it.
func (r *Renderer) InstallmentReceipt(member *models.Member, loan *models.Loan, installment *models.LoanInstallment, balance ledger.Balance) ([]byte, error) {
	d := r.newDocument("Recibo " + installment.ReceiptNumber())
	d.header(strings.ToUpper(r.org.Name)+" - ABONO A PRÉSTAMO", r.now())

	height := 78.0
	if installment.Observaciones != "" {
		height += lineHeight * 1.5
	}
	top := d.pdf.GetY()
	d.pdf.Rect(pageMargin, top, boxWidth, height, "D")

	y := top + 5
	d.field(pageMargin+4, y, "Recibo No:", installment.ReceiptNumber())
	d.field(colRight, y, "Préstamo:", loanLabel(loan))
	y += lineHeight
	d.field(pageMargin+4, y, "Socio:", member.ShortName())
	y += lineHeight
	d.field(pageMargin+4, y, "Documento:", member.Documento)
	y += lineHeight * 1.5
	d.amount(pageMargin+4, y, "Valor Abono:", installment.MontoPago)
	y += lineHeight * 1.5
	d.field(pageMargin+4, y, "Monto Total:", ledger.FormatCOP(loan.MontoTotal))
	d.field(colRight, y, "Saldo:", ledger.FormatCOP(balance.DisplayOutstanding()))
	y += lineHeight
	d.field(pageMargin+4, y, "Fecha Abono:", shortDate(installment.FechaPago))
	d.field(colRight, y, "Forma Pago:", orDefault(installment.FormaPago, "Efectivo"))
	y += lineHeight
	d.field(pageMargin+4, y, "Avance:", balance.PercentPaid().String()+"%")
	if installment.Observaciones != "" {
		y += lineHeight * 1.5
		d.pdf.SetXY(pageMargin+4, y)
		d.pdf.SetFont("Helvetica", "B", 11)
		d.pdf.CellFormat(labelWidth, lineHeight, "Observaciones:", "", 0, "L", false, 0, "")
		d.pdf.SetFont("Helvetica", "", 11)
		d.pdf.CellFormat(boxWidth-labelWidth-8, lineHeight, d.tr(installment.Observaciones), "", 0, "L", false, 0, "")
	}

	d.pdf.SetY(top + height)
	d.signatures("Firma Tesorero", "Firma Socio")
	d.footer("Comprobante de abono a deuda.")

	return d.bytes()
}

// Certificate renders the paz y salvo of a fully paid loan
func (r *Renderer) Certificate(member *models.Member, loan *models.Loan, totalPaid decimal.Decimal) ([]byte, error) {
	now := r.now()
	d := r.newDocument("Paz y Salvo " + loanLabel(loan))

	d.pdf.SetTextColor(10, 35, 66)
	d.pdf.SetFont("Helvetica", "B", 22)
	d.pdf.CellFormat(0, 12, d.tr(strings.ToUpper(r.org.Name)), "", 1, "C", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 6, d.tr("Sistema de Gestión de Socios"), "", 1, "C", false, 0, "")
	d.pdf.Ln(12)
	d.pdf.SetFont("Helvetica", "B", 16)
	d.pdf.CellFormat(0, 10, "CERTIFICADO DE PAZ Y SALVO", "", 1, "C", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(10)

	d.pdf.SetFont("Helvetica", "", 12)
	place := longDate(now)
	if r.org.City != "" {
		place = r.org.City + ", " + place
	}
	d.pdf.CellFormat(0, 8, d.tr(place), "", 1, "R", false, 0, "")
	d.pdf.Ln(8)

	d.pdf.MultiCell(0, 7, d.tr("A quien interese,"), "", "L", false)
	d.pdf.Ln(4)
	d.pdf.MultiCell(0, 7, d.tr(fmt.Sprintf("Por medio del presente documento, %s certifica que:", strings.ToUpper(r.org.Name))), "", "J", false)
	d.pdf.Ln(4)

	d.pdf.SetFont("Helvetica", "B", 13)
	d.pdf.CellFormat(0, 8, d.tr(strings.ToUpper(member.FullName())), "", 1, "C", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 12)
	d.pdf.CellFormat(0, 8, d.tr("Identificado(a) con documento número "+member.Documento), "", 1, "C", false, 0, "")
	d.pdf.Ln(8)

	d.pdf.MultiCell(0, 7, d.tr(fmt.Sprintf(
		"Ha cancelado en su totalidad las obligaciones financieras correspondientes al préstamo %s, por un valor total de %s.",
		loanLabel(loan), ledger.FormatCOP(ledger.Round(totalPaid)))), "", "J", false)
	d.pdf.Ln(3)
	d.pdf.MultiCell(0, 7, d.tr(
		"A la fecha de expedición de este certificado, se encuentra a PAZ Y SALVO por todo concepto relacionado con dicho crédito."), "", "J", false)
	d.pdf.Ln(20)

	d.pdf.CellFormat(0, 7, "Atentamente,", "", 1, "C", false, 0, "")
	d.pdf.Ln(18)
	d.pdf.SetFont("Helvetica", "B", 12)
	d.pdf.CellFormat(0, 7, d.tr("ADMINISTRACIÓN "+strings.ToUpper(r.org.Name)), "", 1, "C", false, 0, "")
	if r.org.NIT != "" {
		d.pdf.SetFont("Helvetica", "", 11)
		d.pdf.CellFormat(0, 6, "Nit. "+r.org.NIT, "", 1, "C", false, 0, "")
	}
	d.footer("Este documento se genera automáticamente y es válido sin firma autógrafa.")

	return d.bytes()
}

func loanLabel(loan *models.Loan) string {
	if loan.Codigo != "" {
		return loan.Codigo
	}
	return ledger.LoanCode(loan.ID)
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func longDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), months[t.Month()-1], t.Year())
}

func shortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func optionalDate(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return shortDate(*t)
}
