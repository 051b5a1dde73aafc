package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server        ServerConfig        `toml:"server"`
	Data          DataConfig          `toml:"data"`
	Templates     TemplatesConfig     `toml:"templates"`
	Consolidation ConsolidationConfig `toml:"consolidation"`
	Upload        UploadConfig        `toml:"upload"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" validate:"min=1,max=65535"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir" validate:"required"`
}

// TemplatesConfig 模板目录与文件名约定
type TemplatesConfig struct {
	Dir        string `toml:"dir" validate:"required"`
	YearPrefix string `toml:"year_prefix" validate:"required"`
}

// ConsolidationConfig 合并行为
type ConsolidationConfig struct {
	// Atomic 合并中途失败时不保留任何写入
	Atomic bool `toml:"atomic"`
}

// UploadConfig 上传限制
type UploadConfig struct {
	MaxFileSizeMB int `toml:"max_file_size_mb" validate:"min=1,max=1024"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	PortSpecified bool
	Path          string
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Templates: TemplatesConfig{
			Dir:        "xlsx-templates",
			YearPrefix: "20XX",
		},
		Consolidation: ConsolidationConfig{
			Atomic: false,
		},
		Upload: UploadConfig{
			MaxFileSizeMB: 32,
		},
	}
}

// MaxUploadBytes 单个上传文件的字节上限
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Upload.MaxFileSizeMB) << 20
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置并返回元信息
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return LoadFile(filepath.Join(exeDir, "config.toml"))
}

// LoadFile 从指定路径加载配置；文件不存在时使用默认配置。环境变量覆盖文件中的值。
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	// 环境变量覆盖（用于 E2E / 本地运行）
	if v := os.Getenv("CONSOLIDATIONS_TEMPLATE_DIR"); v != "" {
		config.Templates.Dir = v
	}
	if v := os.Getenv("CONSOLIDATIONS_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// resolve 相对路径按可执行文件目录解析
func resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, p)
}

// EnsureDataDir 确保数据目录存在
// 相对路径位于可执行文件同目录下
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := resolve(config.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dataDir, "workspaces"), 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// TemplateDir 模板目录的绝对路径
func TemplateDir(config *AppConfig) string {
	return resolve(config.Templates.Dir)
}
