package request

type CartItem struct {
	MedicineID int32 `json:"medicine_id"`
	Quantity   int32 `json:"quantity"    validate:"gte=1"`
}

type Backup struct {
	Kind string `json:"kind"`
}
