// internal/di/container_test.go
package di

import "testing"

// TestContainerRegisterAndGet 测试服务注册与获取
func TestContainerRegisterAndGet(t *testing.T) {
	c := GetContainer()
	c.Clear()

	if c.Has("stats") {
		t.Fatal("清空后的容器不应包含服务")
	}

	c.Register("stats", "service-instance")

	if !c.Has("stats") {
		t.Error("注册后应能查到服务")
	}
	if c.Get("stats") != "service-instance" {
		t.Error("应返回注册的服务实例")
	}
	if c.Get("missing") != nil {
		t.Error("未注册的服务应返回nil")
	}
}

// TestContainerSingleton 测试全局容器是单例
func TestContainerSingleton(t *testing.T) {
	c1 := GetContainer()
	c2 := GetContainer()
	if c1 != c2 {
		t.Fatal("GetContainer应返回同一个实例")
	}
}
