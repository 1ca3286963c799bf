// Package journal хранит исходы попаданий снарядов в BadgerDB.
package journal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/arrow-physics/internal/logging"
	"github.com/annel0/arrow-physics/internal/projectile"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ErrClosed возвращается при обращении к закрытому журналу
var ErrClosed = errors.New("journal: closed")

const keyPrefix = "hit:"

// Key формирует ключ записи: hit:<тик 20 цифр>:<номер 6 цифр>.
// Лексикографический порядок ключей совпадает с порядком записи.
func Key(tick uint64, seq int) []byte {
	return []byte(fmt.Sprintf("%s%020d:%06d", keyPrefix, tick, seq))
}

// Journal - append-only журнал исходов попаданий.
// Исходы копятся в памяти и записываются одной транзакцией на тик (Flush).
type Journal struct {
	db      *badger.DB
	enc     *zstd.Encoder
	dec     *zstd.Decoder
	mutex   sync.Mutex
	isReady bool

	pending []projectile.Outcome
	// Номер следующей записи внутри тика lastTick
	lastTick uint64
	nextSeq  int
	written  uint64
}

// Open открывает журнал в каталоге dataPath/journal
func Open(dataPath string) (*Journal, error) {
	opts := badger.DefaultOptions(filepath.Join(dataPath, "journal"))
	return open(opts)
}

// OpenInMemory открывает журнал без записи на диск
func OpenInMemory() (*Journal, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Journal, error) {
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	j := &Journal{db: db, enc: enc, dec: dec, isReady: true}
	if err := j.restoreCursor(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// restoreCursor продолжает нумерацию записей после последнего ключа журнала
func (j *Journal) restoreCursor() error {
	return j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append([]byte(keyPrefix), 0xff))
		if !it.Valid() {
			return nil
		}
		var tick uint64
		var seq int
		if _, err := fmt.Sscanf(string(it.Item().Key()), keyPrefix+"%d:%d", &tick, &seq); err != nil {
			return fmt.Errorf("повреждённый ключ журнала %q: %w", it.Item().Key(), err)
		}
		j.lastTick, j.nextSeq = tick, seq+1
		return nil
	})
}

// RecordOutcome добавляет исход в очередь на запись
func (j *Journal) RecordOutcome(o projectile.Outcome) {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	if !j.isReady {
		return
	}
	j.pending = append(j.pending, o)
}

// Pending возвращает число исходов, ожидающих записи
func (j *Journal) Pending() int {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return len(j.pending)
}

// Written возвращает число записанных исходов за время работы
func (j *Journal) Written() uint64 {
	j.mutex.Lock()
	defer j.mutex.Unlock()
	return j.written
}

// Flush записывает накопленные исходы одной транзакцией
func (j *Journal) Flush() error {
	j.mutex.Lock()
	defer j.mutex.Unlock()

	if !j.isReady {
		return ErrClosed
	}
	if len(j.pending) == 0 {
		return nil
	}

	lastTick, nextSeq := j.lastTick, j.nextSeq
	err := j.db.Update(func(txn *badger.Txn) error {
		for _, o := range j.pending {
			if o.Tick != lastTick {
				lastTick, nextSeq = o.Tick, 0
			}
			data, err := json.Marshal(o)
			if err != nil {
				return fmt.Errorf("ошибка сериализации исхода: %w", err)
			}
			if err := txn.Set(Key(o.Tick, nextSeq), j.enc.EncodeAll(data, nil)); err != nil {
				return err
			}
			nextSeq++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	logging.Trace("Журнал: записано %d исходов", len(j.pending))
	j.written += uint64(len(j.pending))
	j.lastTick, j.nextSeq = lastTick, nextSeq
	j.pending = j.pending[:0]
	return nil
}

// Range возвращает исходы с тиками от from до to включительно, в порядке записи
func (j *Journal) Range(from, to uint64) ([]projectile.Outcome, error) {
	j.mutex.Lock()
	ready := j.isReady
	j.mutex.Unlock()
	if !ready {
		return nil, ErrClosed
	}

	var result []projectile.Outcome
	upper := Key(to, 999999)

	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(Key(from, 0)); it.Valid(); it.Next() {
			item := it.Item()
			if bytes.Compare(item.Key(), upper) > 0 {
				break
			}
			err := item.Value(func(val []byte) error {
				data, err := j.dec.DecodeAll(val, nil)
				if err != nil {
					return fmt.Errorf("ошибка распаковки %s: %w", item.Key(), err)
				}
				var o projectile.Outcome
				if err := json.Unmarshal(data, &o); err != nil {
					return fmt.Errorf("ошибка десериализации %s: %w", item.Key(), err)
				}
				result = append(result, o)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Close записывает остаток очереди и закрывает журнал
func (j *Journal) Close() error {
	flushErr := j.Flush()
	if errors.Is(flushErr, ErrClosed) {
		return nil
	}

	j.mutex.Lock()
	defer j.mutex.Unlock()
	if !j.isReady {
		return nil
	}
	j.isReady = false
	_ = j.enc.Close()
	j.dec.Close()

	if err := j.db.Close(); err != nil {
		return err
	}
	return flushErr
}
