// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package slotq

// RaceEnabled is true when the race detector is active.
// Concurrent tests that move items through the queue check it: the slot
// items are plain memory ordered by atomix operations the detector does
// not observe.
const RaceEnabled = true
