package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/artificielle/consolidations/internal/service/consolidation"
	"github.com/artificielle/consolidations/internal/service/excel"
	"github.com/artificielle/consolidations/internal/service/workspace"
)

type runOptions struct {
	topic        string
	template     string
	templatesDir string
	yearPrefix   string
	subsidiaries []string
	branches     []string
	output       string
	atomic       bool
}

// runConsolidate 执行一次离线合并，返回输出路径
func runConsolidate(opts runOptions, log logrus.FieldLogger) (string, workspace.RunOutcome, error) {
	topic, err := consolidation.ParseTopic(opts.topic)
	if err != nil {
		return "", workspace.RunOutcome{}, err
	}

	name, data, err := readTemplate(opts, topic)
	if err != nil {
		return "", workspace.RunOutcome{}, err
	}
	w, err := workspace.New("cli", topic, name, data, workspace.Options{Atomic: opts.atomic})
	if err != nil {
		return "", workspace.RunOutcome{}, err
	}
	defer func() { _ = w.Close() }()

	subsidiaries, err := readUploads(opts.subsidiaries)
	if err != nil {
		return "", workspace.RunOutcome{}, err
	}
	branches, err := readUploads(opts.branches)
	if err != nil {
		return "", workspace.RunOutcome{}, err
	}
	// 批处理模式下任何一个文件无效都直接失败
	if errs := w.AddSubsidiaries(subsidiaries).Errors(); len(errs) > 0 {
		return "", workspace.RunOutcome{}, errors.Join(errs...)
	}
	if errs := w.AddBranches(branches).Errors(); len(errs) > 0 {
		return "", workspace.RunOutcome{}, errors.Join(errs...)
	}

	log.WithFields(logrus.Fields{
		"topic":        topic,
		"template":     name,
		"subsidiaries": len(subsidiaries),
		"branches":     len(branches),
		"atomic":       opts.atomic,
	}).Debug("开始合并")

	outcome, err := w.Consolidate()
	if err != nil {
		return "", outcome, err
	}

	out := opts.output
	if out == "" {
		out = w.FileName()
	}
	result, err := w.Save()
	if err != nil {
		return "", outcome, err
	}
	if err := os.WriteFile(out, result, 0644); err != nil {
		return "", outcome, fmt.Errorf("failed to write output: %w", err)
	}
	log.WithFields(logrus.Fields{"output": out, "cells": outcome.CellsWritten}).Debug("合并完成")
	return out, outcome, nil
}

func readTemplate(opts runOptions, topic consolidation.Topic) (string, []byte, error) {
	if opts.template != "" {
		data, err := os.ReadFile(opts.template)
		if err != nil {
			return "", nil, &excel.TemplateLoadError{Name: filepath.Base(opts.template), Err: err}
		}
		return filepath.Base(opts.template), data, nil
	}
	data, err := excel.ReadTemplate(opts.templatesDir, opts.yearPrefix, topic.Name())
	if err != nil {
		return "", nil, err
	}
	return excel.TemplateFileName(opts.yearPrefix, topic.Name()), data, nil
}

func readUploads(paths []string) ([]workspace.Upload, error) {
	uploads := make([]workspace.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		uploads = append(uploads, workspace.Upload{FileName: filepath.Base(p), Data: data})
	}
	return uploads, nil
}

// writeSkeleton 按命名约定写出专题的空白模板
func writeSkeleton(topicName, dir, yearPrefix string) (string, error) {
	topic, err := consolidation.ParseTopic(topicName)
	if err != nil {
		return "", err
	}
	data, err := workspace.SkeletonTemplate(topic)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, excel.TemplateFileName(yearPrefix, topic.Name()))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}
