package box

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"cipherbox/internal/domain"
)

// preKeyIDs returns the identifiers for a batch of count prekeys starting
// at start, wrapping from MaxPreKeyID back to 0.
func preKeyIDs(start, count int) ([]domain.PreKeyID, error) {
	const window = int(domain.MaxPreKeyID) + 1
	if start < 0 || start > int(domain.MaxPreKeyID) {
		return nil, fmt.Errorf("%w: prekey start %d outside [0, %d]", domain.ErrInvalidArgument, start, domain.MaxPreKeyID)
	}
	if count < 1 || count > int(domain.MaxPreKeyID) {
		return nil, fmt.Errorf("%w: prekey count %d outside [1, %d]", domain.ErrInvalidArgument, count, domain.MaxPreKeyID)
	}
	ids := make([]domain.PreKeyID, count)
	for i := range ids {
		ids[i] = domain.PreKeyID((start + i) % window)
	}
	return ids, nil
}

// NewPreKeys generates count prekeys with identifiers starting at start.
// Identifiers wrap past MaxPreKeyID; pass (last+1) mod (MaxPreKeyID+1) as
// the next start. Bad arguments fail with domain.ErrInvalidArgument before
// the engine is called.
//
// Each prekey is persisted as it is generated. If generation fails part way
// the prekeys made so far stay stored and are returned with the error.
func (b *Box) NewPreKeys(start, count int) ([]domain.PreKey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("NewPreKeys"); err != nil {
		return nil, err
	}
	ids, err := preKeyIDs(start, count)
	if err != nil {
		return nil, err
	}

	out := make([]domain.PreKey, 0, len(ids))
	for _, id := range ids {
		data, err := b.ident.NewPreKey(id)
		if err != nil {
			b.metrics.PreKeys(len(out))
			return out, b.engineFailed("new_prekey", err)
		}
		out = append(out, domain.PreKey{ID: id, Data: data})
	}
	b.metrics.PreKeys(len(out))
	b.log.WithFields(logrus.Fields{"start": start, "count": count}).Debug("prekeys generated")
	return out, nil
}

// NewLastPreKey generates the last resort prekey. It is never consumed by
// an incoming session, so peers can always reach this box.
func (b *Box) NewLastPreKey() (domain.PreKey, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.guard("NewLastPreKey"); err != nil {
		return domain.PreKey{}, err
	}
	data, err := b.ident.NewPreKey(domain.LastPreKeyID)
	if err != nil {
		return domain.PreKey{}, b.engineFailed("new_prekey", err)
	}
	b.metrics.PreKeys(1)
	return domain.PreKey{ID: domain.LastPreKeyID, Data: data}, nil
}
