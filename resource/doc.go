// Package resource provides a byte budget shared by column buffers.
//
// Every buffer a column allocates is charged to a Controller before the
// memory is obtained and refunded when the buffer is released. A Controller
// with no limit only tracks usage. A nil *Controller is valid and unlimited.
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64 << 20})
//	db := colgo.New(colgo.WithResourceController(rc))
package resource
