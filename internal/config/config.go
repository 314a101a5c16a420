// Package config 负责加载和验证 YAML 配置文件。
// 提供报表输入、模拟参数、输出设置等配置项；模拟参数可由环境变量覆盖。
package config

import (
	"fmt"
	"math"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config 应用配置根结构
type Config struct {
	// App 应用基础配置
	App AppConfig `yaml:"app"`
	// Input 报表输入配置
	Input InputConfig `yaml:"input"`
	// Simulation 模拟参数
	Simulation SimulationConfig `yaml:"simulation"`
	// Output 输出配置
	Output OutputConfig `yaml:"output"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	// Name 应用名称，用于日志标识
	Name string `yaml:"name"`
	// LogLevel 日志级别: debug, info, warn, error
	LogLevel string `yaml:"log_level"`
}

// InputConfig 报表输入配置
type InputConfig struct {
	// ReportPath MT5 策略测试报表路径（.xlsx）
	ReportPath string `yaml:"report_path"`
	// Sheet 工作表名称，为空时使用活动工作表
	Sheet string `yaml:"sheet"`
	// PrintTrades 是否在报告中列出提取到的交易
	PrintTrades bool `yaml:"print_trades"`
}

// SimulationConfig 模拟参数
// 环境变量优先级高于 YAML（MCSIM_NUM_SIMULATIONS / MCSIM_WORKERS / MCSIM_SEED）
type SimulationConfig struct {
	// NumSimulations 模拟次数
	NumSimulations int `yaml:"num_simulations" envconfig:"MCSIM_NUM_SIMULATIONS"`
	// Workers 并行 worker 数
	Workers int `yaml:"workers" envconfig:"MCSIM_WORKERS"`
	// Seed 随机种子，0 表示每次运行随机生成
	Seed uint64 `yaml:"seed" envconfig:"MCSIM_SEED"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// Dir 输出目录
	Dir string `yaml:"dir"`
	// RunsEnabled 是否输出逐次模拟指标（runs.jsonl）
	RunsEnabled bool `yaml:"runs_enabled"`
	// SummaryEnabled 是否在 runs.jsonl 末尾追加批次汇总
	SummaryEnabled bool `yaml:"summary_enabled"`
	// PrintRuns 是否在控制台列出每次模拟的最终资金
	PrintRuns bool `yaml:"print_runs"`
	// BufferSize 异步写入缓冲区大小
	BufferSize int `yaml:"buffer_size"`
	// MetricsTextfile Prometheus textfile 路径，为空时不输出
	MetricsTextfile string `yaml:"metrics_textfile"`
}

// Load 从文件加载配置并验证
// 参数 path: 配置文件路径
// 返回: 解析后的配置对象，若失败则返回错误
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg.finish()
}

// FromEnv 不读取配置文件，仅使用默认值与环境变量
func FromEnv() (*Config, error) {
	return (&Config{}).finish()
}

func (c *Config) finish() (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()
	if err := c.applyEnv(); err != nil {
		return nil, err
	}

	c.setDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return c, nil
}

// Parse 解析 YAML 内容（不设置默认值、不验证）
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &cfg, nil
}

// Default 返回仅包含默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// applyEnv 使用环境变量覆盖模拟参数
func (c *Config) applyEnv() error {
	if err := envconfig.Process("", &c.Simulation); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}
	return nil
}

// setDefaults 设置配置默认值
func (c *Config) setDefaults() {
	if c.App.Name == "" {
		c.App.Name = "trade-montecarlo"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}

	if c.Simulation.NumSimulations == 0 {
		c.Simulation.NumSimulations = 1000
	}
	if c.Simulation.Workers == 0 {
		c.Simulation.Workers = runtime.NumCPU()
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "./output"
	}
	if c.Output.BufferSize == 0 {
		c.Output.BufferSize = 1000
	}
}

// Validate 验证配置合法性
// 返回: 若配置无效则返回汇总了全部问题的错误
func (c *Config) Validate() error {
	var errs []string

	if c.Simulation.NumSimulations <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.num_simulations: 模拟次数必须为正数，当前值: %d", c.Simulation.NumSimulations))
	}
	// 上限
	if c.Simulation.NumSimulations > math.MaxInt32 {
		errs = append(errs, "simulation.num_simulations: 模拟次数过大")
	}
	if c.Simulation.Workers <= 0 {
		errs = append(errs, "simulation.workers: worker 数必须为正数")
	}

	if c.Output.BufferSize < 0 {
		errs = append(errs, "output.buffer_size: 缓冲区大小不能为负数")
	}
	if (c.Output.RunsEnabled || c.Output.SummaryEnabled) && c.Output.Dir == "" {
		errs = append(errs, "output.dir: 启用文件输出时输出目录不能为空")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.App.LogLevel)] {
		errs = append(errs, fmt.Sprintf("app.log_level: 无效的日志级别 '%s'，有效值: debug, info, warn, error", c.App.LogLevel))
	}

	if len(errs) > 0 {
		return fmt.Errorf("配置验证错误:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// RunsPath runs.jsonl 输出路径
func (c *Config) RunsPath() string {
	return strings.TrimRight(c.Output.Dir, "/") + "/runs.jsonl"
}
