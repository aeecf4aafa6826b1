package world

// Slot is a capacity-bounded counter for one material. Invariant:
// 0 <= Reserved <= Current <= Max. Mutated only through the methods below.
type Slot struct {
	Material string
	Current  int
	Max      int
	Reserved int
}

// Deposit adds up to amount and returns the overflow that did not fit.
func (s *Slot) Deposit(amount int) (overflow int) {
	if amount <= 0 {
		return 0
	}
	free := s.Max - s.Current
	if amount <= free {
		s.Current += amount
		return 0
	}
	s.Current = s.Max
	return amount - free
}

// Withdraw removes up to amount and returns how much was actually taken.
// A withdrawal that undercuts outstanding reservations clamps Reserved down
// to keep Reserved <= Current; claimants that need their material protected
// use WithdrawReserved instead.
func (s *Slot) Withdraw(amount int) (withdrawn int) {
	if amount <= 0 {
		return 0
	}
	if amount > s.Current {
		amount = s.Current
	}
	if amount <= 0 {
		return 0
	}
	s.Current -= amount
	if s.Reserved > s.Current {
		s.Reserved = s.Current
	}
	return amount
}

// Unreserved is the only quantity safe to offer to a new claimant.
func (s *Slot) Unreserved() int {
	return s.Current - s.Reserved
}

// Reserve claims up to amount of the unreserved material and returns how much
// was actually reserved.
func (s *Slot) Reserve(amount int) (reserved int) {
	if amount <= 0 {
		return 0
	}
	avail := s.Current - s.Reserved
	if amount > avail {
		amount = avail
	}
	if amount <= 0 {
		return 0
	}
	s.Reserved += amount
	return amount
}

// ReleaseReservation gives back up to amount of reserved material and returns
// how much was actually released.
func (s *Slot) ReleaseReservation(amount int) (released int) {
	if amount <= 0 {
		return 0
	}
	if amount > s.Reserved {
		amount = s.Reserved
	}
	s.Reserved -= amount
	return amount
}

// WithdrawReserved converts up to amount of reserved material into an actual
// withdrawal, decrementing Reserved and Current by the same quantity.
func (s *Slot) WithdrawReserved(amount int) (withdrawn int) {
	if amount <= 0 {
		return 0
	}
	if amount > s.Reserved {
		amount = s.Reserved
	}
	if amount <= 0 {
		return 0
	}
	s.Reserved -= amount
	s.Current -= amount
	return amount
}
