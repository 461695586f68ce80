package market

const (
	TopicAlertPending = "inventory.alert.pending"
)

// Partition key = product_id, supaya alert satu produk maintain urutan.
func PartitionKey(productID string) []byte { return []byte(productID) }
