package market

import "strconv"

const (
	TopicProductEvents = "market.product.lifecycle"
	TopicOrderEvents   = "market.order.lifecycle"
)

// Partition key = entity id, so all events for one product/order keep order.
func PartitionKey(id uint64) []byte {
	return []byte(strconv.FormatUint(id, 10))
}
