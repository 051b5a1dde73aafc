package workspace

// HoldLock 锁住工作区直到调用返回的函数，用于模拟进行中的合并
func HoldLock(w *Workspace) func() {
	w.mu.Lock()
	return w.mu.Unlock
}
