package sample

import "fmt"

type Config struct {
	Name string
}

type Renderer interface {
	Render() string
}

func Build(name string) Config {
	validate(name)
	return Config{Name: name}
}

func validate(name string) {
	fmt.Println(name)
}

func (c Config) Label() string {
	return c.Name
}

func Run(cfg Config) {
	b := builderFor(cfg)
	b.Assemble()
}
