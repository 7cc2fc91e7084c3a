package reports

import (
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/nandy235/wine-shop-inventory-sub001/internal/shared"
)

// enIN groups amounts the Indian way (1,23,456.00) for printed reports.
var enIN = message.NewPrinter(language.MustParse("en-IN"))

func formatINR(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return enIN.Sprintf("%v", number.Decimal(f,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inr":     formatINR,
	"bizdate": shared.FormatBusinessDate,
	"title": func(t Type) string {
		switch t {
		case TypeStockLifted:
			return "Stock Lifted Report"
		case TypeSales:
			return "Sales Report"
		}
		return "Report"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{title .Type}}</title>
<style>
  body { font-family: Arial, sans-serif; font-size: 12px; margin: 24px; }
  h1 { font-size: 18px; margin-bottom: 2px; }
  .range { color: #555; margin-bottom: 16px; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 20px; }
  th, td { border: 1px solid #999; padding: 4px 6px; text-align: right; }
  th { background: #eee; }
  td.name, th.name { text-align: left; }
  tfoot td { font-weight: bold; }
</style>
</head>
<body>
<h1>{{title .Type}}</h1>
<div class="range">Shop {{.ShopID}} &middot; {{bizdate .From}} to {{bizdate .To}}</div>
<table>
<thead>
<tr>
  <th>Brand No</th><th class="name">Brand Name</th><th>Kind</th>
  <th>Size (ml)</th><th>Cases</th><th>Bottles</th><th>Total Bottles</th>
  <th>Invoice Value</th><th>MRP Value</th>
</tr>
</thead>
<tbody>
{{range .Rows}}
<tr>
  <td>{{.BrandNumber}}</td><td class="name">{{.Name}}</td><td>{{.Kind}}</td>
  <td>{{.SizeML}}</td><td>{{.Quantity.Cases}}</td><td>{{.Quantity.Bottles}}</td>
  <td>{{.Bottles}}</td><td>{{inr .InvoiceValue}}</td><td>{{inr .MRPValue}}</td>
</tr>
{{end}}
</tbody>
<tfoot>
<tr>
  <td colspan="6">Total</td>
  <td>{{.TotalBottles}}</td>
  <td>{{inr .TotalInvoiceValue}}</td>
  <td>{{inr .TotalMRPValue}}</td>
</tr>
</tfoot>
</table>
<table>
<thead>
<tr><th class="name">Category</th><th>Bottles</th><th>MRP Value</th><th>Share %</th></tr>
</thead>
<tbody>
{{range .Kinds}}
<tr>
  <td class="name">{{.Kind}}</td><td>{{.Bottles}}</td>
  <td>{{inr .MRPValue}}</td><td>{{printf "%.2f" .Percent}}</td>
</tr>
{{end}}
</tbody>
</table>
<div>Generated at {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</div>
</body>
</html>`))

func renderHTML(report Report) (string, error) {
	var buf strings.Builder
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}
