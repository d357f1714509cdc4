package payment

import (
	"sort"

	"paycallback/internal/config"
)

// Registry maps a callback route to its adapter.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry wires every supported gateway with its configuration.
func NewRegistry(cfg config.PaymentConfig, confirm *ConfirmationClient) *Registry {
	return NewRegistryOf(
		NewTokopayAdapter(cfg.Tokopay),
		NewPakasirAdapter(cfg.Pakasir, confirm),
		NewDuitkuAdapter(cfg.Duitku),
		NewTripayAdapter(cfg.Tripay),
		NewMidtransAdapter(cfg.Midtrans),
		NewFazzAdapter(cfg.Fazz),
		NewXenditAdapter(cfg.Xendit),
		NewDokuAdapter(cfg.Doku),
		NewQrispwAdapter(cfg.Qrispw, confirm),
	)
}

func NewRegistryOf(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Name()] = a
	}
	return r
}

func (r *Registry) Lookup(route string) (Adapter, error) {
	a, ok := r.adapters[route]
	if !ok {
		return nil, &RejectionError{Kind: ErrUnknownProvider, Provider: route}
	}
	return a, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
