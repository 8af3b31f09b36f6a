// Package submit 负责把构建好的可编程交易解析为完整的 TransactionData，
// 使用当前身份签名并提交给账本节点，再按照统一错误码对结果进行分类。
package submit
