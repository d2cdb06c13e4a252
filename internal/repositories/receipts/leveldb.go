package receipts

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/crowdsale"
	"github.com/Lumerin-protocol/crowdsale/internal/resources/sale/phase"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/vmihailenco/msgpack"
)

var (
	receiptPrefix = []byte("r")
	indexPrefix   = []byte("i")
)

// record is the stored form of a receipt, amounts are decimal strings
type record struct {
	ID        []byte `msgpack:"id"`
	Seq       uint64 `msgpack:"seq"`
	Kind      string `msgpack:"kind"`
	Phase     uint8  `msgpack:"phase"`
	Account   []byte `msgpack:"account"`
	Value     string `msgpack:"value"`
	Accepted  string `msgpack:"accepted"`
	Refund    string `msgpack:"refund"`
	Tokens    string `msgpack:"tokens"`
	Timestamp int64  `msgpack:"ts"`
}

// LevelDB is a persistent receipt store. Receipts are keyed by big-endian sequence number,
// so iteration order is append order
type LevelDB struct {
	db      *leveldb.DB
	lastSeq uint64
	mutex   sync.Mutex
}

func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 16,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            4 * opt.MiB,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot open receipt store %s: %w", path, err)
	}
	store, err := NewLevelDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewLevelDB wraps an open database and resumes the sequence from the last stored receipt
func NewLevelDB(db *leveldb.DB) (*LevelDB, error) {
	iter := db.NewIterator(util.BytesPrefix(receiptPrefix), nil)
	defer iter.Release()

	var lastSeq uint64
	if iter.Last() {
		lastSeq = binary.BigEndian.Uint64(iter.Key()[len(receiptPrefix):])
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}

	return &LevelDB{db: db, lastSeq: lastSeq}, nil
}

func (s *LevelDB) Append(ctx context.Context, r Receipt) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	ok, err := s.db.Has(indexKey(r.ID), nil)
	if err != nil {
		return Receipt{}, err
	}
	if ok {
		return Receipt{}, ErrDuplicate
	}

	r.Seq = s.lastSeq + 1
	data, err := msgpack.Marshal(toRecord(r))
	if err != nil {
		return Receipt{}, err
	}

	batch := new(leveldb.Batch)
	batch.Put(seqKey(r.Seq), data)
	batch.Put(indexKey(r.ID), seqBytes(r.Seq))
	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return Receipt{}, err
	}

	s.lastSeq = r.Seq
	return r, nil
}

func (s *LevelDB) List(ctx context.Context, from uint64, limit int) ([]Receipt, error) {
	iter := s.db.NewIterator(&util.Range{
		Start: seqKey(from),
		Limit: util.BytesPrefix(receiptPrefix).Limit,
	}, nil)
	defer iter.Release()

	res := []Receipt{}
	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r, err := decodeReceipt(iter.Value())
		if err != nil {
			return nil, err
		}
		res = append(res, r)
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res, iter.Error()
}

func (s *LevelDB) Get(ctx context.Context, id uuid.UUID) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	seq, err := s.db.Get(indexKey(id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return Receipt{}, ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	data, err := s.db.Get(append(append([]byte{}, receiptPrefix...), seq...), nil)
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt %s is indexed but missing: %w", id, err)
	}
	return decodeReceipt(data)
}

func (s *LevelDB) Close() error {
	return s.db.Close()
}

func seqBytes(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func seqKey(seq uint64) []byte {
	return append(append([]byte{}, receiptPrefix...), seqBytes(seq)...)
}

func indexKey(id uuid.UUID) []byte {
	return append(append([]byte{}, indexPrefix...), id[:]...)
}

func toRecord(r Receipt) record {
	return record{
		ID:        r.ID[:],
		Seq:       r.Seq,
		Kind:      string(r.Kind),
		Phase:     uint8(r.Phase),
		Account:   r.Account.Bytes(),
		Value:     bigToString(r.Value),
		Accepted:  bigToString(r.Accepted),
		Refund:    bigToString(r.Refund),
		Tokens:    bigToString(r.Tokens),
		Timestamp: r.Timestamp.UnixNano(),
	}
}

func decodeReceipt(data []byte) (Receipt, error) {
	var rec record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return Receipt{}, err
	}

	id, err := uuid.FromBytes(rec.ID)
	if err != nil {
		return Receipt{}, err
	}

	r := Receipt{
		ID:        id,
		Seq:       rec.Seq,
		Kind:      crowdsale.EventKind(rec.Kind),
		Phase:     phase.Phase(rec.Phase),
		Account:   common.BytesToAddress(rec.Account),
		Timestamp: time.Unix(0, rec.Timestamp),
	}
	amounts := []struct {
		dst **big.Int
		src string
	}{
		{&r.Value, rec.Value},
		{&r.Accepted, rec.Accepted},
		{&r.Refund, rec.Refund},
		{&r.Tokens, rec.Tokens},
	}
	for _, a := range amounts {
		v, ok := new(big.Int).SetString(a.src, 10)
		if !ok {
			return Receipt{}, fmt.Errorf("receipt %d has malformed amount %q", rec.Seq, a.src)
		}
		*a.dst = v
	}
	return r, nil
}

func bigToString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
