package world

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/annel0/arrow-physics/internal/physics"
	"github.com/annel0/arrow-physics/internal/projectile"
)

// DefaultCellSize - размер ячейки индекса по умолчанию (ребро чанка)
const DefaultCellSize = 16.0

// SpatialIndex представляет пространственный индекс для быстрого поиска актёров по хитбоксу
type SpatialIndex struct {
	cellSize float64
	cells    map[cellKey]*cellData
	cellsMu  sync.RWMutex
	entries  map[projectile.ActorID]*indexedEntry
	entryMu  sync.RWMutex
}

// cellKey представляет ключ ячейки в пространственной сетке
type cellKey struct {
	x, y, z int
}

// cellData хранит данные ячейки
type cellData struct {
	entries map[projectile.ActorID]*indexedEntry
	mu      sync.RWMutex
}

// indexedEntry представляет индексированного актёра
type indexedEntry struct {
	id    projectile.ActorID
	box   physics.AABB
	cells []cellKey
}

// IndexStats - статистика индекса
type IndexStats struct {
	Entries    int     `json:"entries"`
	Cells      int     `json:"cells"`
	AvgPerCell float64 `json:"avg_per_cell"`
	MaxPerCell int     `json:"max_per_cell"`
}

func (s IndexStats) String() string {
	return fmt.Sprintf("SpatialIndex Stats: %d entries, %d cells, avg %.2f entries/cell, max %d entries/cell",
		s.Entries, s.Cells, s.AvgPerCell, s.MaxPerCell)
}

// NewSpatialIndex создаёт новый пространственный индекс
func NewSpatialIndex(cellSize float64) *SpatialIndex {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}

	return &SpatialIndex{
		cellSize: cellSize,
		cells:    make(map[cellKey]*cellData),
		entries:  make(map[projectile.ActorID]*indexedEntry),
	}
}

// Insert добавляет актёра в индекс или обновляет его хитбокс
func (si *SpatialIndex) Insert(id projectile.ActorID, box physics.AABB) {
	si.entryMu.Lock()
	defer si.entryMu.Unlock()

	if old, exists := si.entries[id]; exists {
		si.unlinkLocked(old)
	}

	entry := &indexedEntry{
		id:    id,
		box:   box,
		cells: si.cellsFor(box),
	}

	si.cellsMu.Lock()
	for _, key := range entry.cells {
		cell := si.getOrCreateCell(key)
		cell.mu.Lock()
		cell.entries[id] = entry
		cell.mu.Unlock()
	}
	si.cellsMu.Unlock()

	si.entries[id] = entry
}

// Update обновляет хитбокс актёра в индексе
func (si *SpatialIndex) Update(id projectile.ActorID, box physics.AABB) {
	si.entryMu.RLock()
	entry, exists := si.entries[id]
	si.entryMu.RUnlock()

	// Ячейки не изменились: достаточно обновить коробку
	if exists && sameCells(entry.cells, si.cellsFor(box)) {
		si.entryMu.Lock()
		entry.box = box
		si.entryMu.Unlock()
		return
	}

	si.Insert(id, box)
}

// Remove удаляет актёра из индекса
func (si *SpatialIndex) Remove(id projectile.ActorID) {
	si.entryMu.Lock()
	defer si.entryMu.Unlock()

	entry, exists := si.entries[id]
	if !exists {
		return
	}
	delete(si.entries, id)
	si.unlinkLocked(entry)
}

// Query возвращает актёров, чьи хитбоксы касаются или пересекают область.
// Результат отсортирован по возрастанию ID.
func (si *SpatialIndex) Query(region physics.AABB) []projectile.ActorID {
	si.entryMu.RLock()
	defer si.entryMu.RUnlock()

	seen := make(map[projectile.ActorID]struct{})
	result := make([]projectile.ActorID, 0)

	si.cellsMu.RLock()
	for _, key := range si.cellsFor(region) {
		cell, exists := si.cells[key]
		if !exists {
			continue
		}
		cell.mu.RLock()
		for id, entry := range cell.entries {
			if _, wasSeen := seen[id]; wasSeen {
				continue
			}
			seen[id] = struct{}{}
			if entry.box.Overlaps(region) {
				result = append(result, id)
			}
		}
		cell.mu.RUnlock()
	}
	si.cellsMu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Len возвращает количество индексированных актёров
func (si *SpatialIndex) Len() int {
	si.entryMu.RLock()
	defer si.entryMu.RUnlock()
	return len(si.entries)
}

// Stats возвращает статистику индекса
func (si *SpatialIndex) Stats() IndexStats {
	si.entryMu.RLock()
	entries := len(si.entries)
	si.entryMu.RUnlock()

	si.cellsMu.RLock()
	defer si.cellsMu.RUnlock()

	stats := IndexStats{Entries: entries, Cells: len(si.cells)}
	total := 0
	for _, cell := range si.cells {
		cell.mu.RLock()
		count := len(cell.entries)
		cell.mu.RUnlock()

		total += count
		if count > stats.MaxPerCell {
			stats.MaxPerCell = count
		}
	}
	if stats.Cells > 0 {
		stats.AvgPerCell = float64(total) / float64(stats.Cells)
	}
	return stats
}

// Вспомогательные методы

// unlinkLocked убирает запись из всех её ячеек. Вызывается под entryMu.
func (si *SpatialIndex) unlinkLocked(entry *indexedEntry) {
	si.cellsMu.Lock()
	defer si.cellsMu.Unlock()

	for _, key := range entry.cells {
		cell, exists := si.cells[key]
		if !exists {
			continue
		}
		cell.mu.Lock()
		delete(cell.entries, entry.id)
		empty := len(cell.entries) == 0
		cell.mu.Unlock()
		if empty {
			delete(si.cells, key)
		}
	}
}

// cellsFor возвращает ключи ячеек, которые пересекаются с коробкой
func (si *SpatialIndex) cellsFor(box physics.AABB) []cellKey {
	minX := int(math.Floor(box.Min[0] / si.cellSize))
	minY := int(math.Floor(box.Min[1] / si.cellSize))
	minZ := int(math.Floor(box.Min[2] / si.cellSize))
	maxX := int(math.Floor(box.Max[0] / si.cellSize))
	maxY := int(math.Floor(box.Max[1] / si.cellSize))
	maxZ := int(math.Floor(box.Max[2] / si.cellSize))

	cells := make([]cellKey, 0, (maxX-minX+1)*(maxY-minY+1)*(maxZ-minZ+1))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				cells = append(cells, cellKey{x: x, y: y, z: z})
			}
		}
	}
	return cells
}

// getOrCreateCell возвращает ячейку или создаёт новую
func (si *SpatialIndex) getOrCreateCell(key cellKey) *cellData {
	if cell, exists := si.cells[key]; exists {
		return cell
	}

	cell := &cellData{
		entries: make(map[projectile.ActorID]*indexedEntry),
	}
	si.cells[key] = cell
	return cell
}

func sameCells(a, b []cellKey) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
