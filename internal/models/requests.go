package models

// APIResponse is the response envelope of the admin API.
type APIResponse struct {
	Status bool        `json:"status"`
	Msg    string      `json:"msg"`
	Obj    interface{} `json:"obj"`
}

// OrderView is the admin view of an order with its latest deliveries.
type OrderView struct {
	Order     *Order        `json:"order"`
	Callbacks []CallbackLog `json:"callbacks"`
}
