package projectile

// MaxPierceLevel - уровни пробивания выше этого значения считаются нулевыми
const MaxPierceLevel = 127

// EffectivePierceLevel приводит настроенный уровень пробивания к рабочему значению
func EffectivePierceLevel(level int) int {
	if level > MaxPierceLevel {
		return 0
	}
	if level < 0 {
		return 0
	}
	return level
}

// Ledger учитывает актёров, уже пробитых снарядом.
// Нулевое значение готово к использованию: счётчик инициализируется при первом обращении.
type Ledger struct {
	struck      map[ActorID]struct{}
	order       []ActorID
	remaining   int
	initialized bool
}

func (l *Ledger) init(level int) {
	if l.initialized {
		return
	}
	l.remaining = EffectivePierceLevel(level) + 1
	l.initialized = true
}

// Remaining возвращает число оставшихся пробиваний для уровня level
func (l *Ledger) Remaining(level int) int {
	l.init(level)
	return l.remaining
}

// Contains проверяет, был ли актёр уже пробит
func (l *Ledger) Contains(id ActorID) bool {
	_, ok := l.struck[id]
	return ok
}

// Struck возвращает пробитых актёров в порядке попаданий
func (l *Ledger) Struck() []ActorID {
	out := make([]ActorID, len(l.order))
	copy(out, l.order)
	return out
}

// Len возвращает число пробитых актёров
func (l *Ledger) Len() int {
	return len(l.order)
}

// TryStrike отмечает актёра пробитым и уменьшает счётчик.
// Возвращает false, если актёр уже в журнале или пробивания исчерпаны.
func (l *Ledger) TryStrike(id ActorID, level int) bool {
	l.init(level)
	if l.remaining <= 0 || l.Contains(id) {
		return false
	}
	if l.struck == nil {
		l.struck = make(map[ActorID]struct{})
	}
	l.struck[id] = struct{}{}
	l.order = append(l.order, id)
	l.remaining--
	return true
}
