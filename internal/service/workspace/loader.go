package workspace

import (
	"errors"
	"sync"

	"github.com/artificielle/consolidations/internal/service/excel"
)

type loadedSource struct {
	fileName string
	book     *excel.Workbook
	sheet    *excel.Worksheet
	err      error
}

// loadSources 并发解析一批上传文件，结果保持上传顺序。
// 无法解析的文件返回 *excel.SourceFileFormatError，不影响同批其他文件。
func loadSources(uploads []Upload) []loadedSource {
	out := make([]loadedSource, len(uploads))

	var wg sync.WaitGroup
	for i, up := range uploads {
		wg.Add(1)
		go func(i int, up Upload) {
			defer wg.Done()
			out[i] = loadSource(up)
		}(i, up)
	}
	wg.Wait()
	return out
}

func loadSource(up Upload) loadedSource {
	res := loadedSource{fileName: up.FileName}
	book, err := excel.LoadWorkbookBytes(up.Data)
	if err != nil {
		res.err = &excel.SourceFileFormatError{FileName: up.FileName, Err: err}
		return res
	}
	sheet, err := book.Sheet(0)
	if err != nil {
		_ = book.Close()
		res.err = &excel.SourceFileFormatError{FileName: up.FileName, Err: errors.New("workbook has no sheets")}
		return res
	}
	res.book = book
	res.sheet = sheet
	return res
}
