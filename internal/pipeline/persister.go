package pipeline

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/user/bingewatch/internal/model"
	"github.com/user/bingewatch/internal/repository"
)

// Persist 将表整体写入 path，覆盖旧版本。
// 先写同目录临时文件再 rename，失败时目标文件保持原样。
// 注意：两次运行并发写同一路径时没有加锁，后完成的一次覆盖先完成的。
func Persist(path string, rows []model.Series) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := repository.WriteSeriesCSV(w, rows); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &model.PersistenceError{Path: path, Err: err}
	}
	return nil
}
