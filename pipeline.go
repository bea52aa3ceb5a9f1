package feather2d

import "sync"

// StepWorlds advances independent worlds by dt, spreading them over workersCount goroutines.
// A world must not appear twice, and listeners run on the goroutine stepping their world.
func StepWorlds(worlds []*World, dt float64, workersCount int) {
	task(max(1, workersCount), worlds, func(w *World) {
		w.Step(dt)
	})
}

func task[T any](workersCount int, data []T, fn func(data T)) {
	var wg sync.WaitGroup
	dataSize := len(data)
	chunkSize := (dataSize + workersCount - 1) / workersCount

	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, dataSize)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				fn(data[i])
			}
		}(start, end)
	}
	wg.Wait()
}
