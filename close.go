package colgo

// Close drops every stored value and resource and releases all column
// buffers. It fails with ErrBorrowConflict while any view is outstanding.
// Close is idempotent; afterwards the database rejects all operations.
func (db *Database) Close() error {
	if db == nil || db.closed {
		return nil
	}

	release, err := db.acquireAll(db.columns)
	if err != nil {
		db.logger.LogClose(db.records.Len(), len(db.columns), err)
		return err
	}

	records, columns := db.records.Len(), len(db.columns)
	for _, c := range db.columns {
		c.Close()
	}
	release()

	db.dropResources()
	db.records.Clear()
	db.closed = true

	db.logger.LogClose(records, columns, nil)
	return nil
}
