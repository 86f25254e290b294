package rank

import "fmt"

// refPrefix is the stable handle prefix consumed by downstream agent
// tooling. The format is a durable external contract; do not change its
// shape.
const refPrefix = "ref://file/"

// RefHandle returns the stable reference handle for a whole file:
// ref://file/<path>.
func RefHandle(path string) string {
	return refPrefix + path
}

// RefHandleRange returns the handle for a line span:
// ref://file/<path>#L<start>-L<end>.
func RefHandleRange(path string, start, end int) string {
	return fmt.Sprintf("%s%s#L%d-L%d", refPrefix, path, start, end)
}
