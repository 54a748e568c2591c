package jobs

import (
	"fmt"
	"html/template"
)

var funcs = template.FuncMap{
	"rupees": func(n int) string { return fmt.Sprintf("₹%d", n) },
	"mul":    func(a, b int) int { return a * b },
}

var orderConfirmationTmpl = template.Must(template.New("order_confirmation").Funcs(funcs).Parse(`
<h2>Thank you for your order!</h2>
<p>Order <strong>{{.Order.ID}}</strong> has been placed and will be delivered to:</p>
<p>{{.Order.DeliveryAddress.FullName}}<br>
{{.Order.DeliveryAddress.AddressLine1}}<br>
{{with .Order.DeliveryAddress.AddressLine2}}{{.}}<br>{{end}}
{{.Order.DeliveryAddress.City}}, {{.Order.DeliveryAddress.State}} {{.Order.DeliveryAddress.Pincode}}</p>
<table>
{{range .Order.Items}}<tr><td>{{.Name}}{{with .Weight}} ({{.}}){{end}}</td><td>× {{.Quantity}}</td><td>{{rupees (mul .Price .Quantity)}}</td></tr>
{{end}}<tr><td>Delivery</td><td></td><td>{{rupees .DeliveryFee}}</td></tr>
<tr><td><strong>Total</strong></td><td></td><td><strong>{{rupees .Order.Total}}</strong></td></tr>
</table>
<p>Payment: {{.Order.PaymentMethod}}</p>
`))

var orderStatusTmpl = template.Must(template.New("order_status").Funcs(funcs).Parse(`
<p>Hi {{.Name}},</p>
<p>Your order <strong>{{.Order.ID}}</strong> is now <strong>{{.Order.Status}}</strong>.</p>
<p>{{.Message}}</p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for one hour.</p>
<p><a href="{{.Link}}">Reset your password</a></p>
<p>If you did not ask for this, ignore this email.</p>
`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<h2>Welcome to Meat Shop, {{.Name}}!</h2>
<p>Fresh chicken, country chicken, goat and turkey, delivered to your door.</p>
`))
