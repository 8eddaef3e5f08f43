// Package notify implementa el notificador de eventos de facturación
// por correo (SMTP vía gomail). El envío es asíncrono y sus fallos no
// afectan al documento ya persistido.
package notify

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	appbilling "github.com/tu-usuario/facturacion-erp/internal/application/billing"
	"github.com/tu-usuario/facturacion-erp/internal/domain/entity"
	"github.com/tu-usuario/facturacion-erp/pkg/config"
	"github.com/tu-usuario/facturacion-erp/pkg/logger"
)

var _ appbilling.Notifier = (*MailNotifier)(nil)

const sendRetries = 3

// MailNotifier envía la notificación de factura creada al correo del cliente.
// Si no hay SMTP configurado, solo registra el evento en el log.
type MailNotifier struct {
	cfg config.MailConfig
	log *logger.Logger
}

// NewMailNotifier construye el notificador.
func NewMailNotifier(cfg config.MailConfig, log *logger.Logger) *MailNotifier {
	return &MailNotifier{cfg: cfg, log: log}
}

// InvoiceCreated notifica la creación de una factura. Retorna de inmediato;
// el envío SMTP ocurre en segundo plano con reintentos.
func (n *MailNotifier) InvoiceCreated(invoice *entity.Invoice, customer *entity.Customer) {
	if !n.cfg.Enabled() || customer.Email == "" {
		n.log.Info().
			Str("invoice_id", invoice.ID).
			Str("customer_id", customer.ID).
			Msg("factura creada (notificación por correo omitida)")
		return
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.cfg.From)
	msg.SetHeader("To", customer.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Factura %s por Q%s", invoice.ID, invoice.Total.StringFixed(2)))
	msg.SetBody("text/plain", fmt.Sprintf(
		"Estimado(a) %s:\n\nSe ha emitido la factura %s con fecha %s por un total de Q%s.\n\nGracias por su compra.",
		customer.Name, invoice.ID, invoice.InvoiceDate.Format("02/01/2006"), invoice.Total.StringFixed(2),
	))

	go n.send(msg, invoice.ID)
}

func (n *MailNotifier) send(msg *gomail.Message, invoiceID string) {
	dialer := gomail.NewDialer(n.cfg.Host, n.cfg.Port, n.cfg.User, n.cfg.Password)

	var err error
	for attempt := 1; attempt <= sendRetries; attempt++ {
		if err = dialer.DialAndSend(msg); err == nil {
			n.log.Info().
				Str("invoice_id", invoiceID).
				Int("attempt", attempt).
				Msg("notificación de factura enviada")
			return
		}
		time.Sleep(time.Duration(attempt) * time.Second)
	}
	n.log.Error().
		Err(err).
		Str("invoice_id", invoiceID).
		Msg("no se pudo enviar la notificación de factura")
}
