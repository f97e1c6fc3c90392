package memutils

import "math"

// Statistics summarizes a set of heaps and the placements carved out of them
type Statistics struct {
	HeapCount      int
	PlacementCount int
	HeapBytes      int
	PlacementBytes int
}

func (s *Statistics) Clear() {
	*s = Statistics{}
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.HeapCount += other.HeapCount
	s.PlacementCount += other.PlacementCount
	s.HeapBytes += other.HeapBytes
	s.PlacementBytes += other.PlacementBytes
}

// UnusedBytes is the number of heap bytes not covered by a live placement
func (s *Statistics) UnusedBytes() int {
	return s.HeapBytes - s.PlacementBytes
}

type DetailedStatistics struct {
	Statistics
	// ReleasedPlacementCount counts placements that are waiting in a reuse list
	ReleasedPlacementCount int
	PlacementSizeMin       int
	PlacementSizeMax       int
	// TailBytes is the room left behind the high-water mark of every heap
	TailBytes int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.ReleasedPlacementCount = 0
	s.PlacementSizeMin = math.MaxInt
	s.PlacementSizeMax = 0
	s.TailBytes = 0
}

func (s *DetailedStatistics) AddHeap(size, tail int) {
	s.HeapCount++
	s.HeapBytes += size
	s.TailBytes += size - tail
}

func (s *DetailedStatistics) AddReleasedPlacement() {
	s.ReleasedPlacementCount++
}

func (s *DetailedStatistics) AddPlacement(size int) {
	s.PlacementCount++
	s.PlacementBytes += size

	if size < s.PlacementSizeMin {
		s.PlacementSizeMin = size
	}

	if size > s.PlacementSizeMax {
		s.PlacementSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.ReleasedPlacementCount += other.ReleasedPlacementCount
	s.TailBytes += other.TailBytes

	if other.PlacementSizeMin < s.PlacementSizeMin {
		s.PlacementSizeMin = other.PlacementSizeMin
	}

	if other.PlacementSizeMax > s.PlacementSizeMax {
		s.PlacementSizeMax = other.PlacementSizeMax
	}
}
