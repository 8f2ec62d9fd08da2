package objects

// ============================================================================
// 原生上下文
// ============================================================================

// NativeContext 一个独立的全局环境
// 持有本环境的 OSR 优化代码缓存和访问控制令牌
type NativeContext struct {
	osrCache      *OSRCodeCache
	securityToken string
}

// NewNativeContext 创建原生上下文
func NewNativeContext(securityToken string) *NativeContext {
	return &NativeContext{
		osrCache:      NewOSRCodeCache(),
		securityToken: securityToken,
	}
}

// OSRCodeCache 本上下文的 OSR 优化代码缓存
func (c *NativeContext) OSRCodeCache() *OSRCodeCache { return c.osrCache }

// MayAccess 是否允许访问另一个上下文的全局对象
func (c *NativeContext) MayAccess(other *NativeContext) bool {
	if other == nil {
		return false
	}
	return c == other || c.securityToken == other.securityToken
}
