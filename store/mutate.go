package store

import "github.com/stevemurr/transfer-store/transfer"

// addTransfer, updateTransfer and deleteTransfer never modify their
// input; they return a new mapping.

func addTransfer(all transfer.Transfers, id string, t transfer.Transfer) (transfer.Transfers, error) {
	if _, ok := all[id]; ok {
		return nil, &AlreadyExistsError{ID: id}
	}
	next := all.Clone()
	next[id] = t
	return next, nil
}

func updateTransfer(all transfer.Transfers, id string, t transfer.Transfer) (transfer.Transfers, error) {
	if _, ok := all[id]; !ok {
		return nil, &NotFoundError{ID: id}
	}
	next := all.Clone()
	next[id] = t
	return next, nil
}

func deleteTransfer(all transfer.Transfers, id string) transfer.Transfers {
	next := all.Clone()
	delete(next, id)
	return next
}
