package infra

// pdf.go renders QR label sheets with go-pdf/fpdf.
// Sheets are A4 with a 3 x 8 grid of 70 x 37 mm labels, the common
// adhesive sheet format. Each label carries a QR of the code plus two text lines.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cipriano/internal/model"

	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/barcode"
)

const (
	etiquetaW    = 70.0
	etiquetaH    = 37.0
	etiquetaCols = 3
	etiquetaRows = 8
	margenX      = 0.0
	margenY      = 0.5
	qrLado       = 30.0
)

// Etiqueta is one printable label.
type Etiqueta struct {
	Codigo  string // encoded in the QR and printed in bold
	Titulo  string
	Detalle string
}

func EtiquetasDePizzas(pizzas []model.Pizza) []Etiqueta {
	out := make([]Etiqueta, len(pizzas))
	for i, p := range pizzas {
		detalle := "$ " + p.Precio.StringFixed(2)
		if p.Tamano != "" {
			detalle = p.Tamano + "  " + detalle
		}
		out[i] = Etiqueta{Codigo: p.ID, Titulo: p.Sabor, Detalle: detalle}
	}
	return out
}

func EtiquetasDeMeseros(meseros []model.Mesero) []Etiqueta {
	out := make([]Etiqueta, len(meseros))
	for i, m := range meseros {
		out[i] = Etiqueta{Codigo: m.Codigo, Titulo: m.Nombre, Detalle: "MESERO"}
	}
	return out
}

// RenderEtiquetas writes the label sheet PDF to w.
func RenderEtiquetas(w io.Writer, titulo string, etiquetas []Etiqueta) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(titulo, true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	porHoja := etiquetaCols * etiquetaRows
	for i, e := range etiquetas {
		if i%porHoja == 0 {
			pdf.AddPage()
		}
		celda := i % porHoja
		x := margenX + float64(celda%etiquetaCols)*etiquetaW
		y := margenY + float64(celda/etiquetaCols)*etiquetaH

		key := barcode.RegisterQR(pdf, e.Codigo, qr.M, qr.Auto)
		barcode.Barcode(pdf, key, x+2, y+(etiquetaH-qrLado)/2, qrLado, qrLado, false)

		textoX := x + qrLado + 4
		textoW := etiquetaW - qrLado - 6
		pdf.SetXY(textoX, y+8)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(textoW, 6, e.Codigo, "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(textoW, 5, tr(recortar(e.Titulo, 22)), "", 2, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(textoW, 5, tr(e.Detalle), "", 2, "L", false, 0, "")
	}
	if len(etiquetas) == 0 {
		pdf.AddPage()
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("pdf: %w", err)
	}
	return pdf.Output(w)
}

// GuardarEtiquetas renders the sheet into storagePath/nombre.pdf and returns the path.
func GuardarEtiquetas(storagePath, nombre string, etiquetas []Etiqueta) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := filepath.Join(storagePath, nombre+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := RenderEtiquetas(f, nombre, etiquetas); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func recortar(s string, n int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "."
	}
	return s
}
